package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ObjectTransport uploads to an HTTP object-storage API that accepts
// POST /object/{bucket}/{path} with a bearer token.
type ObjectTransport struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

type ObjectConfig struct {
	BaseURL string // e.g. https://project.example.co/storage/v1
	Bucket  string
}

func NewObjectTransport(cfg ObjectConfig) *ObjectTransport {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	client := resty.New().
		SetBaseURL(base).
		SetDisableWarn(true)

	return &ObjectTransport{
		client:  client,
		baseURL: base,
		bucket:  cfg.Bucket,
	}
}

func (t *ObjectTransport) Send(ctx context.Context, f File, destPath, token string, onProgress ProgressFunc) (string, error) {
	form, err := streamForm(f, "file", nil, onProgress)
	if err != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: err}
	}

	resp, err := t.request(ctx, token).
		SetHeader("x-upsert", "false").
		SetHeader("Content-Type", form.contentType).
		SetBody(form.body).
		Post(t.objectPath(destPath))
	writeErr := form.wait()
	if err != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: err}
	}
	if !resp.IsSuccess() {
		return "", statusError("upload", destPath, resp)
	}
	if writeErr != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: writeErr}
	}

	form.progress.finish()
	slog.Debug("object uploaded", "path", destPath, "size", f.Size)
	return t.URL(destPath), nil
}

func (t *ObjectTransport) Remove(ctx context.Context, destPath, token string) error {
	resp, err := t.request(ctx, token).Execute(http.MethodDelete, t.objectPath(destPath))
	if err != nil {
		return &TransportError{Op: "remove", Path: destPath, Err: err}
	}
	if !resp.IsSuccess() {
		return statusError("remove", destPath, resp)
	}
	return nil
}

// URL returns the public URL for an object in a public bucket
func (t *ObjectTransport) URL(destPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", t.baseURL, t.bucket, destPath)
}

func (t *ObjectTransport) objectPath(destPath string) string {
	return fmt.Sprintf("/object/%s/%s", t.bucket, destPath)
}

func (t *ObjectTransport) request(ctx context.Context, token string) *resty.Request {
	req := t.client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}
