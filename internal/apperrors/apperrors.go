package apperrors

import "fmt"

// ValidationError indicates malformed or empty input, such as an order
// request with no items.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// OutOfStockError indicates a requested quantity exceeds the product's
// available stock. It carries the product name for the user-facing message.
type OutOfStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// ConflictError indicates a uniqueness conflict, such as registering an
// email that is already taken.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// DuplicateReviewError indicates the user has already reviewed the product.
type DuplicateReviewError struct {
	ProductID string
	UserID    string
}

func (e *DuplicateReviewError) Error() string {
	return fmt.Sprintf("user %s has already reviewed product %s", e.UserID, e.ProductID)
}

// AuthorizationError indicates the actor lacks permission for the requested
// operation (not the owner, or missing the required role).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// PersistenceError wraps a failed storage operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
