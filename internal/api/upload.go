package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
)

// File is one file part of a multipart upload.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Upload performs a multipart request (product image uploads). fields become
// plain form values; files become file parts. The body is buffered up front
// so the 401 retry hop works the same as for JSON requests.
func (c *Client) Upload(ctx context.Context, method, path string, fields map[string]string, files []File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return fmt.Errorf("failed to create file part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return fmt.Errorf("failed to write file part %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return c.do(ctx, method, path, nil, w.FormDataContentType(), buf.Bytes(), out)
}
