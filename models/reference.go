package models

import "gorm.io/gorm"

// References are outgoing links from a document to an entity mentioned in
// it. Origin names the analyzer that produced the link, so one analyzer's
// output can be replaced without touching the others.
type Reference struct {
	Generic

	DocumentID uint     `gorm:"index;not null" json:"document_id"`
	Document   Document `json:"-"`
	EntityID   uint     `gorm:"index;not null" json:"entity_id"`
	Entity     Entity   `json:"-"`
	Origin     string   `gorm:"index" json:"origin"`
	Weight     int      `json:"weight"`
}

func CreateReference(db *gorm.DB, documentID, entityID uint, origin string, weight int) (*Reference, error) {
	reference := Reference{
		DocumentID: documentID,
		EntityID:   entityID,
		Origin:     origin,
		Weight:     weight,
	}

	if err := db.Create(&reference).Error; err != nil {
		return nil, err
	}

	return &reference, nil
}

func GetDocumentReferences(db *gorm.DB, documentID uint) ([]Reference, error) {
	var references []Reference
	err := db.Where("document_id = ?", documentID).Order("weight DESC").Find(&references).Error
	if err != nil {
		return nil, err
	}

	return references, nil
}
