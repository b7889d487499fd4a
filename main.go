package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"inquest/controllers"
	"inquest/core"
	"inquest/ingest"
	"inquest/internal/index"
	"inquest/models"
)

func main() {
	godotenv.Load()

	// connect to the database
	db, err := core.InitDB()
	if err != nil {
		panic(err)
	}

	// auto migrate the database
	err = db.AutoMigrate(
		&models.Role{},
		&models.AccessToken{},
		&models.Collection{},
		&models.Entity{},
		&models.Document{},
		&models.DocumentPage{},
		&models.DocumentRecord{},
		&models.Reference{},
	)
	if err != nil {
		panic(err)
	}

	idx, err := index.Open(indexPath())
	if err != nil {
		panic(err)
	}
	defer idx.Close()

	// set up commands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "ingest":
			runIngest(db, idx, os.Args[2:])
			return
		case "fetch":
			runFetch(db, idx, os.Args[2:])
			return
		case "watch":
			runWatch(db, idx, os.Args[2:])
			return
		case "reindex":
			if err := idx.Reindex(db); err != nil {
				panic(err)
			}
			return
		}
	}

	runServer(db, idx)
}

func indexPath() string {
	if path := os.Getenv("INDEX_PATH"); path != "" {
		return path
	}

	return "inquest.bleve"
}

func requireCollection(db *gorm.DB, foreignID string) *models.Collection {
	collection, err := models.GetCollectionByForeignID(db, foreignID)
	if err != nil {
		panic(err)
	}
	if collection == nil {
		panic("unknown collection: " + foreignID)
	}

	return collection
}

func runIngest(db *gorm.DB, idx *index.Indexer, args []string) {
	if len(args) != 2 {
		panic("usage: inquest ingest <collection-foreign-id> <path>")
	}

	ingestor, err := ingest.NewIngestor(db, idx)
	if err != nil {
		panic(err)
	}

	collection := requireCollection(db, args[0])
	if _, err := ingestor.IngestFile(collection, args[1], models.Metadata{}); err != nil {
		panic(err)
	}
}

func runFetch(db *gorm.DB, idx *index.Indexer, args []string) {
	if len(args) != 2 {
		panic("usage: inquest fetch <collection-foreign-id> <url>")
	}

	ingestor, err := ingest.NewIngestor(db, idx)
	if err != nil {
		panic(err)
	}

	fetcher, err := ingest.NewFetcher(ingestor)
	if err != nil {
		panic(err)
	}

	collection := requireCollection(db, args[0])
	if _, err := fetcher.FetchURL(collection, args[1]); err != nil {
		panic(err)
	}
}

func runWatch(db *gorm.DB, idx *index.Indexer, args []string) {
	if len(args) != 2 {
		panic("usage: inquest watch <collection-foreign-id> <dir>")
	}

	ingestor, err := ingest.NewIngestor(db, idx)
	if err != nil {
		panic(err)
	}

	collection := requireCollection(db, args[0])
	watcher, err := ingest.NewWatcher(ingestor, collection)
	if err != nil {
		panic(err)
	}

	if err := watcher.Run(args[1]); err != nil {
		panic(err)
	}
}

func runServer(db *gorm.DB, idx *index.Indexer) {
	// set up http server
	engine := gin.Default()
	err := engine.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "https://"+os.Getenv("UI_DOMAIN"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Access-Token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	ingestor, err := ingest.NewIngestor(db, idx)
	if err != nil {
		panic(err)
	}

	router := controllers.Router{
		DB:                    db,
		HealthController:      &controllers.HealthController{DB: db},
		CollectionsController: &controllers.CollectionsController{DB: db, Index: idx},
		DocumentsController:   &controllers.DocumentsController{DB: db, Index: idx, Ingestor: ingestor},
		SearchController:      &controllers.SearchController{DB: db, Index: idx},
	}

	router.RegisterRoutes(engine)

	err = engine.Run()
	if err != nil {
		return
	}
}
