package models

import "time"

// Generic is the base embedded by all persisted models. It stands in for
// gorm.Model so timestamps serialize with snake_case JSON keys.
type Generic struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
