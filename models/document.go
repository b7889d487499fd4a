package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentType string

const (
	TypeText    DocumentType = "text"
	TypeTabular DocumentType = "tabular"
	TypeOther   DocumentType = "other"
)

// Records are bulk-inserted in chunks of this size.
const recordChunkSize = 1000

// Documents are investigative artifacts belonging to a collection. The raw
// file lives outside the database; what we persist is its identity (content
// hash), its extracted pages or records, and a metadata mapping used both by
// the API and the search index.
type Document struct {
	Generic

	CollectionID uint       `gorm:"index;not null" json:"collection_id"`
	Collection   Collection `json:"-"`
	// UUID identifies the document to external pipelines. Database IDs are
	// reassigned on re-ingest; the UUID survives it.
	UUID        uuid.UUID      `gorm:"index;not null" json:"uuid"`
	ContentHash string         `gorm:"index;not null" json:"content_hash"`
	ForeignID   string         `json:"foreign_id,omitempty"`
	Type        DocumentType   `gorm:"index;not null" json:"type"`
	Meta        datatypes.JSON `json:"-"`
}

// DocumentView is the API representation of a document: its metadata
// flattened together with the identifying columns. Public is nil when the
// caller's visibility of the owning collection is unknown.
type DocumentView struct {
	Metadata
	ID           uint         `json:"id"`
	Type         DocumentType `json:"type"`
	CollectionID uint         `json:"collection_id"`
	Public       *bool        `json:"public"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DocumentIndexView is the search-index representation: the API view plus
// every text snippet of the document.
type DocumentIndexView struct {
	DocumentView
	Text []string `json:"text"`
}

func CreateDocument(db *gorm.DB, collection *Collection, docType DocumentType, meta Metadata) (*Document, error) {
	document := Document{
		CollectionID: collection.ID,
		UUID:         uuid.New(),
		Type:         docType,
	}
	if err := document.SetMetadata(meta); err != nil {
		return nil, err
	}

	if err := db.Create(&document).Error; err != nil {
		return nil, err
	}

	return &document, nil
}

func GetDocumentByID(db *gorm.DB, id uint) (*Document, error) {
	var document Document
	err := db.First(&document, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &document, nil
}

func GetDocumentByUUID(db *gorm.DB, documentUUID uuid.UUID) (*Document, error) {
	var document Document
	err := db.Where("uuid = ?", documentUUID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &document, nil
}

// GetCollectionDocumentByHash finds a document with the same content inside a
// collection. Ingestion uses it to update instead of duplicating.
func GetCollectionDocumentByHash(db *gorm.DB, collectionID uint, contentHash string) (*Document, error) {
	var document Document
	err := db.Where("collection_id = ? AND content_hash = ?", collectionID, contentHash).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &document, nil
}

func GetCollectionDocuments(db *gorm.DB, collectionID uint, limit, offset int) ([]Document, error) {
	var documents []Document
	err := db.Where("collection_id = ?", collectionID).Order("id").Offset(offset).Limit(limit).Find(&documents).Error
	if err != nil {
		return nil, err
	}

	return documents, nil
}

// GetMaxDocumentID returns the highest assigned document ID, or zero when no
// documents exist.
func GetMaxDocumentID(db *gorm.DB) (uint, error) {
	var maxID *uint
	err := db.Model(&Document{}).Select("max(id)").Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	if maxID == nil {
		return 0, nil
	}

	return *maxID, nil
}

// Metadata decodes the meta column, mirroring the content hash and foreign
// identifier columns into it.
func (d *Document) Metadata() (Metadata, error) {
	var meta Metadata
	if len(d.Meta) > 0 {
		if err := json.Unmarshal(d.Meta, &meta); err != nil {
			return meta, err
		}
	}
	meta.ContentHash = d.ContentHash
	meta.ForeignID = d.ForeignID

	return meta, nil
}

// SetMetadata encodes the metadata into the meta column and copies the
// content hash and foreign identifier back to their own columns.
func (d *Document) SetMetadata(meta Metadata) error {
	if meta.ContentHash != "" {
		d.ContentHash = meta.ContentHash
	}
	if meta.ForeignID != "" {
		d.ForeignID = meta.ForeignID
	}
	meta.ContentHash = d.ContentHash
	meta.ForeignID = d.ForeignID

	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	d.Meta = datatypes.JSON(raw)

	return nil
}

// UpdateMeta validates incoming metadata, merges it into the stored metadata
// and persists the document. Protected fields survive the merge.
func (d *Document) UpdateMeta(db *gorm.DB, incoming Metadata) error {
	if err := incoming.Validate(); err != nil {
		return err
	}

	meta, err := d.Metadata()
	if err != nil {
		return err
	}
	meta.Merge(incoming)
	if err := d.SetMetadata(meta); err != nil {
		return err
	}

	return db.Save(d).Error
}

func (d *Document) DeletePages(db *gorm.DB) error {
	return db.Where("document_id = ?", d.ID).Delete(&DocumentPage{}).Error
}

func (d *Document) DeleteRecords(db *gorm.DB) error {
	return db.Where("document_id = ?", d.ID).Delete(&DocumentRecord{}).Error
}

// DeleteReferences removes the document's outgoing references, optionally
// only those produced by one origin.
func (d *Document) DeleteReferences(db *gorm.DB, origin string) error {
	query := db.Where("document_id = ?", d.ID)
	if origin != "" {
		query = query.Where("origin = ?", origin)
	}

	return query.Delete(&Reference{}).Error
}

// Delete removes the document and everything hanging off it. References go
// first, then records, then pages, then the row itself; the ordering is
// explicit rather than left to database-level cascades.
func (d *Document) Delete(db *gorm.DB) error {
	if err := d.DeleteReferences(db, ""); err != nil {
		return err
	}
	if err := d.DeleteRecords(db); err != nil {
		return err
	}
	if err := d.DeletePages(db); err != nil {
		return err
	}

	return db.Delete(d).Error
}

// InsertRecords bulk-inserts one sheet of tabular rows. Row indices follow
// iteration order; inserts go to the database in chunks.
func (d *Document) InsertRecords(db *gorm.DB, sheet int, rows []datatypes.JSONMap) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]DocumentRecord, 0, len(rows))
	for i, data := range rows {
		records = append(records, DocumentRecord{
			DocumentID: d.ID,
			Sheet:      sheet,
			RowIndex:   i,
			Data:       data,
		})
	}

	return db.CreateInBatches(records, recordChunkSize).Error
}

// TextParts returns every text snippet of the document: page texts for text
// documents, record values for tabular ones.
func (d *Document) TextParts(db *gorm.DB) ([]string, error) {
	var parts []string

	switch d.Type {
	case TypeText:
		var pages []DocumentPage
		err := db.Where("document_id = ?", d.ID).Order("number").Find(&pages).Error
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			parts = append(parts, page.TextParts()...)
		}
	case TypeTabular:
		var records []DocumentRecord
		err := db.Where("document_id = ?", d.ID).Order("sheet, row_index").Find(&records).Error
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			parts = append(parts, record.TextParts()...)
		}
	}

	return parts, nil
}

// View builds the API representation. public reflects the caller's
// visibility of the owning collection; pass nil when unknown.
func (d *Document) View(public *bool) (DocumentView, error) {
	meta, err := d.Metadata()
	if err != nil {
		return DocumentView{}, err
	}

	return DocumentView{
		Metadata:     meta,
		ID:           d.ID,
		Type:         d.Type,
		CollectionID: d.CollectionID,
		Public:       public,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// IndexView builds the search-index representation: the API view plus the
// document's text parts.
func (d *Document) IndexView(db *gorm.DB, public *bool) (DocumentIndexView, error) {
	view, err := d.View(public)
	if err != nil {
		return DocumentIndexView{}, err
	}

	parts, err := d.TextParts(db)
	if err != nil {
		return DocumentIndexView{}, err
	}

	return DocumentIndexView{DocumentView: view, Text: parts}, nil
}
