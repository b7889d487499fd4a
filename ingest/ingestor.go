// Package ingest turns files into documents: it hashes content, extracts
// pages or tabular records, and feeds the search index.
package ingest

import (
	"crypto/sha1"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inquest/internal"
	"inquest/internal/index"
	"inquest/models"
)

type Ingestor struct {
	db     *gorm.DB
	index  *index.Indexer
	logger *zap.SugaredLogger
}

func NewIngestor(db *gorm.DB, idx *index.Indexer) (*Ingestor, error) {
	logger, err := internal.NewLogger("ingest")
	if err != nil {
		return nil, err
	}

	return &Ingestor{
		db:     db,
		index:  idx,
		logger: logger,
	}, nil
}

func typeForExtension(ext string) models.DocumentType {
	switch ext {
	case ".pdf", ".html", ".htm", ".txt", ".md", ".text":
		return models.TypeText
	case ".csv", ".xlsx":
		return models.TypeTabular
	default:
		return models.TypeOther
	}
}

func supportedExtension(ext string) bool {
	return typeForExtension(ext) != models.TypeOther
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	digest := sha1.New()
	if _, err := io.Copy(digest, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", digest.Sum(nil)), nil
}

// IngestFile stores the file at path as a document of the collection. A file
// whose content hash already exists in the collection updates the existing
// document instead of creating a second one.
func (ing *Ingestor) IngestFile(collection *models.Collection, path string, meta models.Metadata) (*models.Document, error) {
	contentHash, err := hashFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if meta.FileName == "" {
		meta.FileName = filepath.Base(path)
	}
	if meta.Extension == "" {
		meta.Extension = strings.TrimPrefix(ext, ".")
	}
	if meta.MimeType == "" {
		meta.MimeType = mime.TypeByExtension(ext)
	}
	meta.ContentHash = contentHash

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	docType := typeForExtension(ext)

	document, err := models.GetCollectionDocumentByHash(ing.db, collection.ID, contentHash)
	if err != nil {
		return nil, err
	}
	if document == nil {
		document, err = models.CreateDocument(ing.db, collection, docType, meta)
		if err != nil {
			return nil, err
		}
	} else {
		// Same content seen again: refresh the type and metadata, then
		// re-extract.
		document.Type = docType
		if err := document.UpdateMeta(ing.db, meta); err != nil {
			return nil, err
		}
		if err := document.DeleteRecords(ing.db); err != nil {
			return nil, err
		}
		if err := document.DeletePages(ing.db); err != nil {
			return nil, err
		}
	}

	switch docType {
	case models.TypeText:
		pages, err := extractPages(path, ext)
		if err != nil {
			return nil, err
		}
		if _, err := models.CreateDocumentPages(ing.db, document, pages); err != nil {
			return nil, err
		}
	case models.TypeTabular:
		sheets, err := extractSheets(path, ext)
		if err != nil {
			return nil, err
		}
		for sheet, rows := range sheets {
			if err := document.InsertRecords(ing.db, sheet, rows); err != nil {
				return nil, err
			}
		}
	}

	view, err := document.IndexView(ing.db, nil)
	if err != nil {
		return nil, err
	}
	if err := ing.index.IndexDocument(document, view); err != nil {
		return nil, err
	}

	ing.logger.Infow("ingested document",
		"collection", collection.ID,
		"document", document.ID,
		"type", docType,
		"file", meta.FileName,
	)

	return document, nil
}
