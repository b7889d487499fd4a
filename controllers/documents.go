package controllers

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inquest/ingest"
	"inquest/internal/index"
	"inquest/models"
)

type DocumentsController struct {
	DB       *gorm.DB
	Index    *index.Indexer
	Ingestor *ingest.Ingestor
}

// recordView adds the record's stable identifier to its serialization.
type recordView struct {
	models.DocumentRecord
	TID string `json:"tid"`
}

// collectionPublic resolves the caller's visibility of a document's
// collection; nil when the collection cannot be loaded.
func (dc DocumentsController) collectionPublic(collectionID uint) *bool {
	collection, err := models.GetCollectionByID(dc.DB, collectionID)
	if err != nil || collection == nil {
		return nil
	}

	return &collection.Public
}

func (dc DocumentsController) getDocument(c *gin.Context) *models.Document {
	id, err := uintParam(c, "id")
	if err != nil {
		RespondBadRequest(c, err)
		return nil
	}

	document, err := models.GetDocumentByID(dc.DB, id)
	if err != nil {
		RespondInternalErr(c)
		return nil
	}
	if document == nil {
		RespondNotFound(c)
		return nil
	}

	return document
}

func (dc DocumentsController) GetDocument(c *gin.Context) {
	document := dc.getDocument(c)
	if document == nil {
		return
	}

	view, err := document.View(dc.collectionPublic(document.CollectionID))
	if err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, view)
}

func (dc DocumentsController) GetCollectionDocuments(c *gin.Context) {
	collectionID, err := uintParam(c, "id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	limit, offset, err := pagination(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	collection, err := models.GetCollectionByID(dc.DB, collectionID)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	if collection == nil {
		RespondNotFound(c)
		return
	}

	documents, err := models.GetCollectionDocuments(dc.DB, collection.ID, limit, offset)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	views := make([]models.DocumentView, 0, len(documents))
	for i := range documents {
		view, err := documents[i].View(&collection.Public)
		if err != nil {
			RespondInternalErr(c)
			return
		}
		views = append(views, view)
	}

	RespondOK(c, views)
}

// saveUploadedTemp copies an uploaded file into a uniquely named temporary
// file, keeping the original extension so type detection still works.
func saveUploadedTemp(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	temp, err := os.CreateTemp("", "inquest-upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer temp.Close()

	if _, err := io.Copy(temp, src); err != nil {
		os.Remove(temp.Name())
		return "", err
	}

	return temp.Name(), nil
}

// UploadDocument ingests a multipart file into the collection.
func (dc DocumentsController) UploadDocument(c *gin.Context) {
	collectionID, err := uintParam(c, "id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	collection, err := models.GetCollectionByID(dc.DB, collectionID)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	if collection == nil {
		RespondNotFound(c)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondBadRequest(c, ErrInvalidRequest)
		return
	}

	temp, err := saveUploadedTemp(fileHeader)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	defer os.Remove(temp)

	meta := models.Metadata{
		Title:    c.PostForm("title"),
		FileName: fileHeader.Filename,
	}

	document, err := dc.Ingestor.IngestFile(collection, temp, meta)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	view, err := document.View(&collection.Public)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, view)
}

// UpdateMetadata merges validated metadata into the document and refreshes
// its index entries.
func (dc DocumentsController) UpdateMetadata(c *gin.Context) {
	document := dc.getDocument(c)
	if document == nil {
		return
	}

	var incoming models.Metadata
	if err := c.BindJSON(&incoming); err != nil {
		RespondBadRequest(c, ErrInvalidRequest)
		return
	}

	if err := document.UpdateMeta(dc.DB, incoming); err != nil {
		RespondBadRequest(c, err)
		return
	}

	indexView, err := document.IndexView(dc.DB, nil)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	if err := dc.Index.IndexDocument(document, indexView); err != nil {
		RespondInternalErr(c)
		return
	}

	view, err := document.View(dc.collectionPublic(document.CollectionID))
	if err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, view)
}

// DeleteDocument performs the ordered delete and drops the document from the
// search index.
func (dc DocumentsController) DeleteDocument(c *gin.Context) {
	document := dc.getDocument(c)
	if document == nil {
		return
	}

	if err := document.Delete(dc.DB); err != nil {
		RespondInternalErr(c)
		return
	}

	if err := dc.Index.DeleteDocument(document.ID); err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, nil)
}

func (dc DocumentsController) GetPages(c *gin.Context) {
	document := dc.getDocument(c)
	if document == nil {
		return
	}

	limit, offset, err := pagination(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	pages, err := models.GetDocumentPages(dc.DB, document.ID, limit, offset)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, pages)
}

func (dc DocumentsController) GetPage(c *gin.Context) {
	document := dc.getDocument(c)
	if document == nil {
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		RespondBadRequest(c, ErrInvalidRequest)
		return
	}

	page, err := models.GetDocumentPage(dc.DB, document.ID, number)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	if page == nil {
		RespondNotFound(c)
		return
	}

	RespondOK(c, page)
}

func (dc DocumentsController) GetRecords(c *gin.Context) {
	document := dc.getDocument(c)
	if document == nil {
		return
	}

	limit, offset, err := pagination(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	var sheet *int
	if value := c.Query("sheet"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			RespondBadRequest(c, ErrInvalidRequest)
			return
		}
		sheet = &parsed
	}

	records, err := models.GetDocumentRecords(dc.DB, document.ID, sheet, limit, offset)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	views := make([]recordView, 0, len(records))
	for i := range records {
		views = append(views, recordView{
			DocumentRecord: records[i],
			TID:            records[i].TID(),
		})
	}

	RespondOK(c, views)
}
