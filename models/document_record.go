package models

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentRecords hold the rows of tabular-type documents, identified by
// sheet index and row index within the document. The cell values live in an
// arbitrary key/value payload.
type DocumentRecord struct {
	Generic

	DocumentID uint              `gorm:"index;not null" json:"document_id"`
	Document   Document          `json:"-"`
	Sheet      int               `gorm:"not null" json:"sheet"`
	RowIndex   int               `gorm:"not null" json:"row_index"`
	Data       datatypes.JSONMap `json:"data"`
}

// GetDocumentRecords lists a document's records, optionally restricted to
// one sheet.
func GetDocumentRecords(db *gorm.DB, documentID uint, sheet *int, limit, offset int) ([]DocumentRecord, error) {
	query := db.Where("document_id = ?", documentID)
	if sheet != nil {
		query = query.Where("sheet = ?", *sheet)
	}

	var records []DocumentRecord
	err := query.Order("sheet, row_index").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func CountDocumentRecords(db *gorm.DB, documentID uint) (int64, error) {
	var count int64
	err := db.Model(&DocumentRecord{}).Where("document_id = ?", documentID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// TID derives a stable identifier for the record from its position within
// the document, for consumers that need to address rows across re-ingests.
func (r *DocumentRecord) TID() string {
	digest := sha1.New()
	fmt.Fprintf(digest, "%d", r.DocumentID)
	fmt.Fprintf(digest, "%d", r.Sheet)
	fmt.Fprintf(digest, "%d", r.RowIndex)

	return fmt.Sprintf("%x", digest.Sum(nil))
}

// TextParts returns the non-empty string forms of the record's values, in
// column name order so the output is stable across calls.
func (r *DocumentRecord) TextParts() []string {
	columns := make([]string, 0, len(r.Data))
	for column := range r.Data {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var parts []string
	for _, column := range columns {
		if text := stringValue(r.Data[column]); text != "" {
			parts = append(parts, text)
		}
	}

	return parts
}

// stringValue renders a record value for search. JSON payloads decode into
// strings, float64s and bools; everything else falls back to fmt.
func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
