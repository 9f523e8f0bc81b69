package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
)

// MediaTransport uploads videos to a media CDN with an unsigned upload
// preset and builds a playback URL with the delivery transform in its path.
type MediaTransport struct {
	client       *resty.Client
	deliveryURL  string
	cloudName    string
	uploadPreset string
	transform    string
	format       string
	folder       string
}

type MediaConfig struct {
	APIURL       string // https://api.cloudinary.com
	DeliveryURL  string // https://res.cloudinary.com
	CloudName    string
	UploadPreset string
	Transform    string // e.g. c_limit,w_1280,q_auto,f_mp4
	Format       string // container extension of the playback URL
	Folder       string
}

type mediaResult struct {
	PublicID  string  `json:"public_id"`
	SecureURL string  `json:"secure_url"`
	Duration  float64 `json:"duration"`
}

type mediaError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewMediaTransport(cfg MediaConfig) *MediaTransport {
	format := cfg.Format
	if format == "" {
		format = "mp4"
	}
	return &MediaTransport{
		client:       resty.New().SetBaseURL(strings.TrimSuffix(cfg.APIURL, "/")),
		deliveryURL:  strings.TrimSuffix(cfg.DeliveryURL, "/"),
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		transform:    strings.Trim(cfg.Transform, "/"),
		format:       format,
		folder:       strings.Trim(cfg.Folder, "/"),
	}
}

// Send ignores token: the upload preset is the credential.
func (t *MediaTransport) Send(ctx context.Context, f File, destPath, _ string, onProgress ProgressFunc) (string, error) {
	publicID := t.publicID(destPath)
	form, err := streamForm(f, "file", []formField{
		{"upload_preset", t.uploadPreset},
		{"public_id", publicID},
	}, onProgress)
	if err != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: err}
	}

	result := &mediaResult{}
	failure := &mediaError{}
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", form.contentType).
		SetBody(form.body).
		SetResult(result).
		SetError(failure).
		Post(fmt.Sprintf("/v1_1/%s/video/upload", t.cloudName))
	writeErr := form.wait()
	if err != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: err}
	}
	if !resp.IsSuccess() {
		terr := statusError("upload", destPath, resp)
		if failure.Error.Message != "" {
			terr.Body = failure.Error.Message
		}
		return "", terr
	}
	if writeErr != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: writeErr}
	}
	if result.PublicID == "" {
		return "", &TransportError{Op: "upload", Path: destPath, StatusCode: resp.StatusCode(), Body: "response has no public_id"}
	}

	form.progress.finish()
	slog.Debug("video uploaded", "public_id", result.PublicID, "duration", result.Duration)
	return t.PlaybackURL(result.PublicID), nil
}

// PlaybackURL builds the delivery URL for a stored video.
func (t *MediaTransport) PlaybackURL(publicID string) string {
	parts := []string{t.deliveryURL, t.cloudName, "video", "upload"}
	if t.transform != "" {
		parts = append(parts, t.transform)
	}
	parts = append(parts, publicID+"."+t.format)
	return strings.Join(parts, "/")
}

// publicID drops the extension; the CDN appends its own.
func (t *MediaTransport) publicID(destPath string) string {
	id := strings.TrimSuffix(destPath, path.Ext(destPath))
	if t.folder != "" {
		id = t.folder + "/" + id
	}
	return id
}
