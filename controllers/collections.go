package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inquest/internal/index"
	"inquest/models"
)

type CollectionsController struct {
	DB    *gorm.DB
	Index *index.Indexer
}

// CollectionInput describes a collection to be created.
type CollectionInput struct {
	Label     string `json:"label" binding:"required"`
	ForeignID string `json:"foreign_id" binding:"required"`
	Public    bool   `json:"public"`
}

func (cc CollectionsController) GetCollections(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	collections, err := models.GetCollections(cc.DB, c.Query("query"), limit, offset)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, collections)
}

func (cc CollectionsController) GetCollection(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	collection, err := models.GetCollectionByID(cc.DB, id)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	if collection == nil {
		RespondNotFound(c)
		return
	}

	RespondOK(c, collection)
}

func (cc CollectionsController) CreateCollection(c *gin.Context) {
	var input CollectionInput
	if err := c.BindJSON(&input); err != nil {
		RespondBadRequest(c, ErrInvalidRequest)
		return
	}

	roleID := CurrentRoleID(c)
	collection, err := models.CreateCollection(cc.DB, input.Label, input.ForeignID, input.Public, &roleID)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	RespondOK(c, collection)
}

// DeleteCollection removes the collection with all of its documents,
// dropping each document from the search index as well.
func (cc CollectionsController) DeleteCollection(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	collection, err := models.GetCollectionByID(cc.DB, id)
	if err != nil {
		RespondInternalErr(c)
		return
	}
	if collection == nil {
		RespondNotFound(c)
		return
	}

	// Collect document IDs before the rows disappear.
	var documentIDs []uint
	err = cc.DB.Model(&models.Document{}).Where("collection_id = ?", collection.ID).Pluck("id", &documentIDs).Error
	if err != nil {
		RespondInternalErr(c)
		return
	}

	if err := collection.Delete(cc.DB); err != nil {
		RespondInternalErr(c)
		return
	}

	for _, documentID := range documentIDs {
		if err := cc.Index.DeleteDocument(documentID); err != nil {
			RespondInternalErr(c)
			return
		}
	}

	RespondOK(c, nil)
}
