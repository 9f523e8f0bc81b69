// Package media measures video metadata before upload.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/templui/vows/internal/storage"
)

var ErrNoDuration = errors.New("media has no readable duration")

// Prober reads the playback duration of a video.
type Prober interface {
	Duration(ctx context.Context, f storage.File) (time.Duration, error)
}

// ProbeFunc adapts a function to Prober.
type ProbeFunc func(ctx context.Context, f storage.File) (time.Duration, error)

func (p ProbeFunc) Duration(ctx context.Context, f storage.File) (time.Duration, error) {
	return p(ctx, f)
}

// FFProbe shells out to ffprobe. Files without a local path are spooled to
// a temporary file first, since ffprobe needs to seek.
type FFProbe struct {
	Timeout time.Duration
	TempDir string
}

func NewFFProbe() *FFProbe {
	return &FFProbe{Timeout: 30 * time.Second}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

func (p *FFProbe) Duration(ctx context.Context, f storage.File) (time.Duration, error) {
	path := f.Path
	if path == "" {
		tmp, err := p.spool(f)
		if err != nil {
			return 0, err
		}
		defer func() { _ = os.Remove(tmp) }()
		path = tmp
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	out, err := ffmpeg.ProbeWithTimeout(path, p.Timeout, ffmpeg.KwArgs{})
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", f.Name, err)
	}

	return ParseDuration([]byte(out))
}

func (p *FFProbe) spool(f storage.File) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("file %s has no content", f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	tmp, err := os.CreateTemp(p.TempDir, "probe-*"+filepath.Ext(f.Name))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = tmp.Close() }()

	_, err = io.Copy(tmp, src)
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to spool %s: %w", f.Name, err)
	}

	return tmp.Name(), nil
}

// ParseDuration reads the container duration from ffprobe's JSON output,
// falling back to the first video stream.
func ParseDuration(out []byte) (time.Duration, error) {
	var probe probeOutput
	err := json.Unmarshal(out, &probe)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	raw := probe.Format.Duration
	if raw == "" {
		for _, s := range probe.Streams {
			if s.CodecType == "video" && s.Duration != "" {
				raw = s.Duration
				break
			}
		}
	}
	if raw == "" || raw == "N/A" {
		return 0, ErrNoDuration
	}

	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, raw)
	}

	return time.Duration(secs * float64(time.Second)).Round(time.Millisecond), nil
}
