package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Collections group the documents of one investigation. Public collections
// are readable without credentials.
type Collection struct {
	Generic

	Label string `gorm:"not null" json:"label"`
	// Foreign identifier assigned by whoever loaded the collection. It is
	// unique so loaders can re-run without duplicating collections.
	ForeignID string `gorm:"uniqueIndex" json:"foreign_id"`
	Public    bool   `gorm:"not null; default:false" json:"public"`
	CreatorID *uint  `gorm:"index" json:"-"`
}

func CreateCollection(db *gorm.DB, label, foreignID string, public bool, creatorID *uint) (*Collection, error) {
	collection := Collection{
		Label:     label,
		ForeignID: foreignID,
		Public:    public,
		CreatorID: creatorID,
	}

	if err := db.Create(&collection).Error; err != nil {
		return nil, err
	}

	return &collection, nil
}

func GetCollectionByID(db *gorm.DB, id uint) (*Collection, error) {
	var collection Collection
	err := db.First(&collection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &collection, nil
}

func GetCollectionByForeignID(db *gorm.DB, foreignID string) (*Collection, error) {
	var collection Collection
	err := db.Where("foreign_id = ?", foreignID).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &collection, nil
}

func GetCollections(db *gorm.DB, query string, limit, offset int) ([]Collection, error) {
	var collections []Collection
	var result *gorm.DB

	if len(query) > 0 {
		pattern := "%" + strings.ToLower(query) + "%"
		result = db.Where("lower(label) LIKE ?", pattern).Offset(offset).Limit(limit).Order("label").Find(&collections)
	} else {
		result = db.Offset(offset).Limit(limit).Order("label").Find(&collections)
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return collections, nil
}

// Delete removes the collection with all of its documents and entities.
// Documents are deleted one by one so each performs its ordered cleanup.
func (col *Collection) Delete(db *gorm.DB) error {
	for {
		documents, err := GetCollectionDocuments(db, col.ID, recordChunkSize, 0)
		if err != nil {
			return err
		}
		if len(documents) == 0 {
			break
		}
		for i := range documents {
			if err := documents[i].Delete(db); err != nil {
				return err
			}
		}
	}

	if err := db.Where("collection_id = ?", col.ID).Delete(&Entity{}).Error; err != nil {
		return err
	}

	return db.Delete(col).Error
}
