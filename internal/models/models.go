package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string    `gorm:"size:200;not null"        json:"-"`
	IsAdmin      bool      `gorm:"default:false"            json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"size:200;not null"        json:"name"`
	Description   string    `json:"description"`
	DetailedSpecs string    `json:"detailed_specs"`
	SKU           string    `gorm:"column:sku;uniqueIndex;size:50;not null" json:"sku"`
	Quantity      int       `gorm:"default:0"                json:"quantity"`
	Price         float64   `json:"price"`
	CategoryID    *uint     `gorm:"index"                    json:"category_id"`
	Category      *Category `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	ViewsCount    int       `gorm:"default:0"                json:"views_count"`
}
