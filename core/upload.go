package core

import (
	"context"
	"io"
)

type (
	// File is a media file selected for upload.
	File struct {
		Name        string
		ContentType string
		Size        int64
		Content     io.Reader
	}

	// Uploader is any service that can host a file and return its
	// public URL. The URL must be obtained before any entity payload
	// referencing it is written.
	Uploader interface {
		Upload(ctx context.Context, file File) (url string, err error)
	}
)
