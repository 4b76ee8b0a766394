// Package storage uploads chat attachments to the external file store and
// hands back time-limited retrieval URLs. File bytes never touch the rest of
// the application; only attachment metadata does.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"idekassen.app/intake/core/config"
	"idekassen.app/intake/internal/model"
)

// MaxFileSize is the upload cap per attachment.
const MaxFileSize = 10 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrNotConfigured   = errors.New("file storage is not configured")
)

// allowedTypes is the closed set of MIME types accepted for attachments.
var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
	"application/vnd.ms-excel": {},
}

func TypeAllowed(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

type Client interface {
	// Upload validates and stores one file, returning attachment metadata
	// with a signed retrieval URL.
	Upload(ctx context.Context, name, contentType string, size int64, r io.Reader) (*model.Attachment, error)
}

type client struct {
	cfg  config.StorageConfig
	http *http.Client
}

func NewClient(cfg config.StorageConfig) Client {
	return &client{
		cfg: cfg,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *client) Upload(ctx context.Context, name, contentType string, size int64, r io.Reader) (*model.Attachment, error) {
	if !c.cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !TypeAllowed(contentType) {
		return nil, ErrUnsupportedType
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		// LimitReader guards against callers lying about size.
		if _, err := io.Copy(part, io.LimitReader(r, MaxFileSize+1)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	url := fmt.Sprintf("%s/buckets/%s/objects?expiry=%d", c.cfg.BaseURL, c.cfg.Bucket, c.cfg.URLExpiry)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("X-Upload-Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, body)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}

	slog.InfoContext(ctx, "attachment uploaded",
		"name", name,
		"content_type", contentType,
		"size_bytes", size,
	)

	return &model.Attachment{
		URL:  parsed.URL,
		Name: name,
		Type: contentType,
	}, nil
}
