package models

import (
	"errors"

	"gorm.io/gorm"
)

// Roles are the analysts and loaders allowed to modify data through the API.
type Role struct {
	Generic

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"unique" json:"-"`
	IsAdmin bool   `gorm:"not null; default:false" json:"is_admin"`
}

func CreateRole(db *gorm.DB, name, email string) (*Role, error) {
	role := Role{
		Name:  name,
		Email: email,
	}

	if err := db.Create(&role).Error; err != nil {
		return nil, err
	}

	return &role, nil
}

func GetRoleByID(db *gorm.DB, id uint) (*Role, error) {
	var role Role
	err := db.First(&role, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &role, nil
}
