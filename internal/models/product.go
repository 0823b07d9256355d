package models

import "gorm.io/gorm"

// Product represents a product in the catalog. Price and Stock are
// authoritative: order pricing always reads them from here, never from the
// client payload. Stock never goes below zero.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SellerID    string   `json:"seller_id" gorm:"type:varchar(36);index"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Image       string   `json:"image" validate:"omitempty,max=255"`
	Brand       string   `json:"brand" validate:"omitempty,max=100"`
	Category    string   `json:"category" gorm:"index" validate:"omitempty,max=100"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Rating      float64  `json:"rating"`
	NumReviews  int      `json:"num_reviews"`
	Reviews     []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Review is a single user review of a product. A user may review each
// product at most once.
type Review struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36);index"`
	UserID    string `json:"user_id" gorm:"type:varchar(36)"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=500"`
	gorm.Model
}
