package ingest

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"inquest/internal"
	"inquest/models"
)

// Fetcher downloads remote documents and hands them to the ingestor.
type Fetcher struct {
	ingestor *Ingestor
	client   *retryablehttp.Client
	logger   *zap.SugaredLogger
}

func NewFetcher(ingestor *Ingestor) (*Fetcher, error) {
	logger, err := internal.NewLogger("fetch")
	if err != nil {
		return nil, err
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Fetcher{
		ingestor: ingestor,
		client:   client,
		logger:   logger,
	}, nil
}

// FetchURL downloads rawURL into a temporary file and ingests it into the
// collection, recording the source URL in the document's metadata.
func (f *Fetcher) FetchURL(collection *models.Collection, rawURL string) (*models.Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	response, err := f.client.Get(rawURL)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %v: unexpected status %v", rawURL, response.StatusCode)
	}

	ext := extensionFor(parsed.Path, response.Header.Get("Content-Type"))
	temp, err := os.CreateTemp("", "inquest-fetch-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(temp.Name())

	if _, err := io.Copy(temp, response.Body); err != nil {
		temp.Close()
		return nil, err
	}
	if err := temp.Close(); err != nil {
		return nil, err
	}

	meta := models.Metadata{
		SourceURL: rawURL,
		FileName:  path.Base(parsed.Path),
	}

	f.logger.Infow("fetched document", "url", rawURL, "collection", collection.ID)

	return f.ingestor.IngestFile(collection, temp.Name(), meta)
}

// extensionFor prefers the response content type over the URL path, since
// many document URLs carry no extension at all.
func extensionFor(urlPath, contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "text/html":
			return ".html"
		case "application/pdf":
			return ".pdf"
		case "text/csv":
			return ".csv"
		case "text/plain":
			return ".txt"
		}
	}

	if ext := path.Ext(urlPath); ext != "" {
		return ext
	}

	return ".html"
}
