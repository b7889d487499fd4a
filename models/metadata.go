package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var metadataValidator = validator.New()

// Metadata holds the descriptive attributes of a document. It is stored in
// the document's meta column; the content hash and foreign identifier are
// mirrored from the document's own columns whenever metadata is read, and
// copied back whenever it is set.
type Metadata struct {
	ContentHash string `json:"content_hash,omitempty"`
	ForeignID   string `json:"foreign_id,omitempty"`

	Title     string   `json:"title,omitempty"`
	FileName  string   `json:"file_name,omitempty"`
	Extension string   `json:"extension,omitempty"`
	MimeType  string   `json:"mime_type,omitempty"`
	SourceURL string   `json:"source_url,omitempty" validate:"omitempty,url"`
	Author    string   `json:"author,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Languages []string `json:"languages,omitempty" validate:"dive,min=2,max=3,alpha"`
	Countries []string `json:"countries,omitempty" validate:"dive,len=2,alpha"`
	Keywords  []string `json:"keywords,omitempty"`
	Dates     []string `json:"dates,omitempty" validate:"dive,datetime=2006-01-02"`
}

// Validate checks incoming metadata before it is merged into a document.
func (m Metadata) Validate() error {
	return metadataValidator.Struct(m)
}

// Merge copies every field the incoming metadata sets onto m. The content
// hash and foreign identifier are protected: they belong to the document
// columns and are never overwritten by a merge.
func (m *Metadata) Merge(incoming Metadata) {
	if incoming.Title != "" {
		m.Title = incoming.Title
	}
	if incoming.FileName != "" {
		m.FileName = incoming.FileName
	}
	if incoming.Extension != "" {
		m.Extension = incoming.Extension
	}
	if incoming.MimeType != "" {
		m.MimeType = incoming.MimeType
	}
	if incoming.SourceURL != "" {
		m.SourceURL = incoming.SourceURL
	}
	if incoming.Author != "" {
		m.Author = incoming.Author
	}
	if incoming.Summary != "" {
		m.Summary = incoming.Summary
	}
	if len(incoming.Languages) > 0 {
		m.Languages = incoming.Languages
	}
	if len(incoming.Countries) > 0 {
		m.Countries = incoming.Countries
	}
	if len(incoming.Keywords) > 0 {
		m.Keywords = incoming.Keywords
	}
	if len(incoming.Dates) > 0 {
		m.Dates = incoming.Dates
	}
}

// DisplayTitle falls back to the file name when no title was extracted.
func (m Metadata) DisplayTitle() string {
	if title := strings.TrimSpace(m.Title); title != "" {
		return title
	}
	return strings.TrimSpace(m.FileName)
}
