package models

import "time"

type Category struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	Name          string        `json:"name" gorm:"not null;uniqueIndex"`
	Description   string        `json:"description"`
	ImageURL      string        `json:"image_url"`
	DisplayOrder  int           `json:"display_order" gorm:"default:0"`
	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type Subcategory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CategoryID  uint      `json:"category_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"not null"`
	Description   string       `json:"description"`
	PriceCents    int64        `json:"price_cents" gorm:"not null"`
	CategoryID    uint         `json:"category_id" gorm:"not null;index"`
	Category      *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SubcategoryID *uint        `json:"subcategory_id"`
	Subcategory   *Subcategory `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`
	ImageURL      string       `json:"image_url"`
	PrepMinutes   int          `json:"preparation_time_minutes" gorm:"column:preparation_time_minutes;default:15"`
	DisplayOrder  int          `json:"display_order" gorm:"default:0"`
	IsAvailable   bool         `json:"is_available" gorm:"default:true"`
	IsVegetarian  bool         `json:"is_vegetarian" gorm:"default:false"`
	IsSpicy       bool         `json:"is_spicy" gorm:"default:false"`
	IsGlutenFree  bool         `json:"is_gluten_free" gorm:"default:false"`
	IsChefSpecial bool         `json:"is_chef_special" gorm:"default:false"`
	IsRecommended bool         `json:"is_recommended" gorm:"default:false"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
