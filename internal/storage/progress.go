package storage

import (
	"io"
)

// progressReader counts bytes as they are pulled by the HTTP client.
// Reports never go backwards, even when the SDK rewinds the body to sign it.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	last       float64
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.total > 0 {
			p.report(float64(p.read) / float64(p.total))
		}
	}
	return n, err
}

// finish reports completion, the only report when total is unknown.
func (p *progressReader) finish() {
	p.report(1)
}

func (p *progressReader) report(fraction float64) {
	if fraction > 1 {
		fraction = 1
	}
	if fraction <= p.last || p.onProgress == nil {
		return
	}
	p.last = fraction
	p.onProgress(fraction)
}

// seekingProgressReader keeps the body seekable for clients that retry or hash.
type seekingProgressReader struct {
	*progressReader
	s io.Seeker
}

func (p *seekingProgressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.s.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}

// wrapProgress returns a seekable reader when the source allows it.
func wrapProgress(r io.Reader, total int64, onProgress ProgressFunc) (io.Reader, *progressReader) {
	pr := newProgressReader(r, total, onProgress)
	if s, ok := r.(io.Seeker); ok {
		return &seekingProgressReader{progressReader: pr, s: s}, pr
	}
	return pr, pr
}
