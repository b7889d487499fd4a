package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	DB                    *gorm.DB
	HealthController      *HealthController
	CollectionsController *CollectionsController
	DocumentsController   *DocumentsController
	SearchController      *SearchController
}

func (r Router) RegisterRoutes(router gin.IRouter) {
	//
	// Anonymous requests
	//
	router.GET("/health", r.HealthController.Status)

	router.GET("/collections", r.CollectionsController.GetCollections)
	router.GET("/collections/:id", r.CollectionsController.GetCollection)
	router.GET("/collections/:id/documents", r.DocumentsController.GetCollectionDocuments)

	router.GET("/documents/:id", r.DocumentsController.GetDocument)
	router.GET("/documents/:id/pages", r.DocumentsController.GetPages)
	router.GET("/documents/:id/pages/:number", r.DocumentsController.GetPage)
	router.GET("/documents/:id/records", r.DocumentsController.GetRecords)

	router.GET("/search", r.SearchController.Search)

	//
	// Authorized Requests
	//
	authorized := router.Group("/", RequireAuth(r.DB))
	authorized.POST("/collections", r.CollectionsController.CreateCollection)
	authorized.DELETE("/collections/:id", r.CollectionsController.DeleteCollection)
	authorized.POST("/collections/:id/documents", r.DocumentsController.UploadDocument)
	authorized.PUT("/documents/:id/metadata", r.DocumentsController.UpdateMetadata)
	authorized.DELETE("/documents/:id", r.DocumentsController.DeleteDocument)
}
