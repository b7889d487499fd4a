package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inquest/ingest"
	"inquest/internal/index"
	"inquest/models"
)

const testToken = "test-token"

type testEnv struct {
	db     *gorm.DB
	index  *index.Indexer
	engine *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
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
		t.Fatal(err)
	}

	role, err := models.CreateRole(db, "Test Analyst", "analyst@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateAccessToken(db, role.ID, testToken); err != nil {
		t.Fatal(err)
	}

	idx, err := index.NewMemOnly()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	ingestor, err := ingest.NewIngestor(db, idx)
	if err != nil {
		t.Fatal(err)
	}

	engine := gin.New()
	router := Router{
		DB:                    db,
		HealthController:      &HealthController{DB: db},
		CollectionsController: &CollectionsController{DB: db, Index: idx},
		DocumentsController:   &DocumentsController{DB: db, Index: idx, Ingestor: ingestor},
		SearchController:      &SearchController{DB: db, Index: idx},
	}
	router.RegisterRoutes(engine)

	return &testEnv{db: db, index: idx, engine: engine}
}

func (env *testEnv) request(t *testing.T, method, target string, body io.Reader, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, target, body)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		request.Header.Set("X-Access-Token", testToken)
	}

	recorder := httptest.NewRecorder()
	env.engine.ServeHTTP(recorder, request)

	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, data any) {
	t.Helper()

	var response struct {
		Errors []string        `json:"errors"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding %q: %v", recorder.Body.String(), err)
	}
	if data == nil {
		return
	}
	if err := json.Unmarshal(response.Data, data); err != nil {
		t.Fatalf("decoding data %q: %v", response.Data, err)
	}
}

func seedDocument(t *testing.T, env *testEnv) (*models.Collection, *models.Document) {
	t.Helper()

	collection, err := models.CreateCollection(env.db, "Test Leaks", "test-leaks", true, nil)
	if err != nil {
		t.Fatal(err)
	}

	document, err := models.CreateDocument(env.db, collection, models.TypeText, models.Metadata{
		ContentHash: "cafe01",
		Title:       "Annual Report",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateDocumentPages(env.db, document, []string{"falcons in the annual report", "page two"}); err != nil {
		t.Fatal(err)
	}

	view, err := document.IndexView(env.db, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.index.IndexDocument(document, view); err != nil {
		t.Fatal(err)
	}

	return collection, document
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(t, http.MethodGet, "/health", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestCreateCollectionRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	body := `{"label":"Test Leaks","foreign_id":"test-leaks"}`

	recorder := env.request(t, http.MethodPost, "/collections", strings.NewReader(body), false)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", recorder.Code)
	}

	recorder = env.request(t, http.MethodPost, "/collections", strings.NewReader(body), true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %v", recorder.Code, recorder.Body.String())
	}

	var collection models.Collection
	decodeData(t, recorder, &collection)
	if collection.Label != "Test Leaks" || collection.ID == 0 {
		t.Errorf("unexpected collection: %+v", collection)
	}
}

func TestGetDocument(t *testing.T) {
	env := newTestEnv(t)
	collection, document := seedDocument(t, env)

	recorder := env.request(t, http.MethodGet, "/documents/999", nil, false)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown document, got %d", recorder.Code)
	}

	recorder = env.request(t, http.MethodGet, "/documents/1", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var view models.DocumentView
	decodeData(t, recorder, &view)
	if view.ID != document.ID || view.CollectionID != collection.ID {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Title != "Annual Report" {
		t.Errorf("metadata missing from view: %+v", view)
	}
	if view.Public == nil || !*view.Public {
		t.Error("expected public to resolve to true")
	}
}

func TestDocumentPagesAndRecords(t *testing.T) {
	env := newTestEnv(t)
	collection, _ := seedDocument(t, env)

	tabular, err := models.CreateDocument(env.db, collection, models.TypeTabular, models.Metadata{ContentHash: "beef02"})
	if err != nil {
		t.Fatal(err)
	}
	err = tabular.InsertRecords(env.db, 0, []datatypes.JSONMap{{"name": "acme"}, {"name": "globex"}})
	if err != nil {
		t.Fatal(err)
	}

	recorder := env.request(t, http.MethodGet, "/documents/1/pages", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var pages []models.DocumentPage
	decodeData(t, recorder, &pages)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}

	recorder = env.request(t, http.MethodGet, "/documents/1/pages/2", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var page models.DocumentPage
	decodeData(t, recorder, &page)
	if page.Number != 2 || page.Text != "page two" {
		t.Errorf("unexpected page: %+v", page)
	}

	recorder = env.request(t, http.MethodGet, "/documents/1/pages/5", nil, false)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing page, got %d", recorder.Code)
	}

	recorder = env.request(t, http.MethodGet, "/documents/2/records?sheet=0", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var records []struct {
		models.DocumentRecord
		TID string `json:"tid"`
	}
	decodeData(t, recorder, &records)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TID == "" || records[0].TID == records[1].TID {
		t.Errorf("tids missing or colliding: %+v", records)
	}
}

func TestUpdateMetadata(t *testing.T) {
	env := newTestEnv(t)
	seedDocument(t, env)

	body := `{"title":"Updated Title","source_url":"https://example.com/report"}`
	recorder := env.request(t, http.MethodPut, "/documents/1/metadata", strings.NewReader(body), true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", recorder.Code, recorder.Body.String())
	}

	var view models.DocumentView
	decodeData(t, recorder, &view)
	if view.Title != "Updated Title" {
		t.Errorf("title not updated: %+v", view)
	}
	if view.ContentHash != "cafe01" {
		t.Errorf("content hash must survive metadata update: %+v", view)
	}

	recorder = env.request(t, http.MethodPut, "/documents/1/metadata", strings.NewReader(`{"source_url":"::"}`), true)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid metadata, got %d", recorder.Code)
	}
}

func TestDeleteDocumentRemovesEverything(t *testing.T) {
	env := newTestEnv(t)
	_, document := seedDocument(t, env)

	recorder := env.request(t, http.MethodDelete, "/documents/1", nil, false)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", recorder.Code)
	}

	recorder = env.request(t, http.MethodDelete, "/documents/1", nil, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	recorder = env.request(t, http.MethodGet, "/documents/1", nil, false)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", recorder.Code)
	}

	var count int64
	if err := env.db.Model(&models.DocumentPage{}).Where("document_id = ?", document.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("pages survived delete: %d", count)
	}

	ids, err := env.index.Search("falcons", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("document still in index after delete: %v", ids)
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	collection, document := seedDocument(t, env)

	recorder := env.request(t, http.MethodGet, "/search", nil, false)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing query, got %d", recorder.Code)
	}

	recorder = env.request(t, http.MethodGet, "/search?q=falcons", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var views []models.DocumentView
	decodeData(t, recorder, &views)
	if len(views) != 1 || views[0].ID != document.ID {
		t.Fatalf("unexpected search results: %+v", views)
	}
	if views[0].Public == nil || !*views[0].Public {
		t.Error("expected public resolution in search results")
	}

	recorder = env.request(t, http.MethodGet, "/search?q=falcons&collection_id=999", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	views = nil
	decodeData(t, recorder, &views)
	if len(views) != 0 {
		t.Errorf("expected no results outside collection %d, got %+v", collection.ID, views)
	}
}

func buildFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

func TestSaveUploadedTempUniquePaths(t *testing.T) {
	first, err := saveUploadedTemp(buildFileHeader(t, "report.csv", "name\nacme\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(first)

	second, err := saveUploadedTemp(buildFileHeader(t, "report.csv", "name\nglobex\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(second)

	if first == second {
		t.Fatalf("uploads with the same filename share a path: %s", first)
	}
	if filepath.Ext(first) != ".csv" || filepath.Ext(second) != ".csv" {
		t.Errorf("extension not preserved: %s, %s", first, second)
	}

	content, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "name\nacme\n" {
		t.Errorf("first upload overwritten: %q", content)
	}
}

func TestUploadDocument(t *testing.T) {
	env := newTestEnv(t)
	collection, err := models.CreateCollection(env.db, "Test Leaks", "test-leaks", false, nil)
	if err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "accounts.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("name,amount\nacme,100\n")); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteField("title", "Offshore Accounts"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	request := httptest.NewRequest(http.MethodPost, "/collections/1/documents", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("X-Access-Token", testToken)
	recorder := httptest.NewRecorder()
	env.engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", recorder.Code, recorder.Body.String())
	}

	var view models.DocumentView
	decodeData(t, recorder, &view)
	if view.Type != models.TypeTabular || view.CollectionID != collection.ID {
		t.Errorf("unexpected uploaded document: %+v", view)
	}
	if view.Title != "Offshore Accounts" {
		t.Errorf("title from form not applied: %+v", view)
	}

	count, err := models.CountDocumentRecords(env.db, view.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 record, got %d", count)
	}
}
