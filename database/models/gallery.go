package models

import "gorm.io/gorm"

// Category groups paintings for the public catalog.
// A category owns its paintings exclusively: deleting the category deletes
// every painting that references it.
type Category struct {
	gorm.Model
	Name             string     `gorm:"uniqueIndex;not null"`
	FeaturedImageURL string     `gorm:"not null"`
	IsFeatured       bool       `gorm:"default:false"`
	Paintings        []Painting `gorm:"constraint:OnDelete:CASCADE"`
}

// Painting is a single item in the catalog. It always belongs to exactly
// one category and is either available or sold.
type Painting struct {
	gorm.Model
	Title       string  `gorm:"not null"`
	Description string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
	ImageURL    string  `gorm:"not null"`
	IsSold      bool    `gorm:"default:false"`
	CategoryID  uint    `gorm:"not null;index"`
}
