package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inquest/internal/index"
	"inquest/models"
)

type SearchController struct {
	DB    *gorm.DB
	Index *index.Indexer
}

// Search runs a full-text query and returns matching documents, best first.
func (sc SearchController) Search(c *gin.Context) {
	queryString := c.Query("q")
	if queryString == "" {
		RespondBadRequest(c, ErrInvalidRequest)
		return
	}

	var collectionID uint
	if value := c.Query("collection_id"); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			RespondBadRequest(c, ErrInvalidRequest)
			return
		}
		collectionID = uint(parsed)
	}

	limit, _, err := pagination(c)
	if err != nil {
		RespondBadRequest(c, err)
		return
	}

	ids, err := sc.Index.Search(queryString, collectionID, limit)
	if err != nil {
		RespondInternalErr(c)
		return
	}

	// The index can be ahead of the database; skip documents it no longer
	// has.
	publics := map[uint]*bool{}
	views := make([]models.DocumentView, 0, len(ids))
	for _, id := range ids {
		document, err := models.GetDocumentByID(sc.DB, id)
		if err != nil {
			RespondInternalErr(c)
			return
		}
		if document == nil {
			continue
		}

		public, ok := publics[document.CollectionID]
		if !ok {
			collection, err := models.GetCollectionByID(sc.DB, document.CollectionID)
			if err == nil && collection != nil {
				public = &collection.Public
			}
			publics[document.CollectionID] = public
		}

		view, err := document.View(public)
		if err != nil {
			RespondInternalErr(c)
			return
		}
		views = append(views, view)
	}

	RespondOK(c, views)
}
