package models

import (
	"errors"

	"gorm.io/gorm"
)

// Entities are the people, companies and other things references point at.
type Entity struct {
	Generic

	CollectionID uint       `gorm:"index;not null" json:"collection_id"`
	Collection   Collection `json:"-"`
	Name         string     `gorm:"not null" json:"name"`
	Category     string     `gorm:"index" json:"category"`
}

func CreateEntity(db *gorm.DB, collection *Collection, name, category string) (*Entity, error) {
	entity := Entity{
		CollectionID: collection.ID,
		Name:         name,
		Category:     category,
	}

	if err := db.Create(&entity).Error; err != nil {
		return nil, err
	}

	return &entity, nil
}

func GetEntityByID(db *gorm.DB, id uint) (*Entity, error) {
	var entity Entity
	err := db.First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &entity, nil
}
