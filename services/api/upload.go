package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tomeducation/admin/core"
)

// Uploader hosts media files on the API's file-upload endpoint and
// hands back the public URL for embedding in an entity payload. The
// entity write referencing the URL must only be issued after Upload
// returns; on error the write is skipped entirely.
//
// Size ceilings vary per resource, so the caller enforces them before
// invoking Upload; the uploader only rejects non-image content.
type Uploader struct {
	client *Client
}

var _ core.Uploader = (*Uploader)(nil)

func NewUploader(c *Client) *Uploader {
	return &Uploader{client: c}
}

func (u *Uploader) Upload(ctx context.Context, file core.File) (string, error) {
	// checked before any network I/O
	if !isImage(file) {
		return "", core.NewValidationError(
			errors.New("only image files can be uploaded"),
			core.FieldError{Field: "file", Error: "only image files are allowed"},
		)
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return "", errors.Wrap(err, "preparing upload form")
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "finalizing upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.client.url("/file-upload", nil), body)
	if err != nil {
		return "", errors.Wrap(err, "building upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := u.client.checkStatus(resp); err != nil {
		return "", err
	}

	var out struct {
		URL string `json:"Url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decoding upload response")
	}
	// a 200 without the hosted URL is still a failure; persisting an
	// entity with a blank media reference is a correctness bug
	if out.URL == "" {
		return "", errors.New("upload response missing file URL")
	}
	return out.URL, nil
}

// isImage accepts a declared image MIME type, falling back to the
// file extension when the type is absent or generic.
func isImage(file core.File) bool {
	if strings.HasPrefix(file.ContentType, "image/") {
		return true
	}
	if file.ContentType == "" || file.ContentType == "application/octet-stream" {
		byExt := mime.TypeByExtension(filepath.Ext(file.Name))
		return strings.HasPrefix(byExt, "image/")
	}
	return false
}
