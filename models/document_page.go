package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// DocumentPages hold the extracted text of text-type documents, one row per
// page, ordered by page number within the document.
type DocumentPage struct {
	Generic

	DocumentID uint     `gorm:"index;not null" json:"document_id"`
	Document   Document `json:"-"`
	// Number is 1-based, matching how people refer to pages.
	Number int    `gorm:"not null" json:"number"`
	Text   string `json:"text"`
}

// CreateDocumentPages stores one page per text, numbering them from 1 in
// order.
func CreateDocumentPages(db *gorm.DB, document *Document, texts []string) ([]DocumentPage, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	pages := make([]DocumentPage, 0, len(texts))
	for i, text := range texts {
		pages = append(pages, DocumentPage{
			DocumentID: document.ID,
			Number:     i + 1,
			Text:       text,
		})
	}

	if err := db.CreateInBatches(pages, recordChunkSize).Error; err != nil {
		return nil, err
	}

	return pages, nil
}

func GetDocumentPage(db *gorm.DB, documentID uint, number int) (*DocumentPage, error) {
	var page DocumentPage
	err := db.Where("document_id = ? AND number = ?", documentID, number).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &page, nil
}

func GetDocumentPages(db *gorm.DB, documentID uint, limit, offset int) ([]DocumentPage, error) {
	var pages []DocumentPage
	err := db.Where("document_id = ?", documentID).Order("number").Offset(offset).Limit(limit).Find(&pages).Error
	if err != nil {
		return nil, err
	}

	return pages, nil
}

// TextParts returns the page's text as a snippet, or nothing when the page
// is blank.
func (p *DocumentPage) TextParts() []string {
	if strings.TrimSpace(p.Text) == "" {
		return nil
	}

	return []string{p.Text}
}
