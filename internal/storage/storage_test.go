package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressLog struct {
	mu        sync.Mutex
	fractions []float64
}

func (p *progressLog) record(f float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fractions = append(p.fractions, f)
}

func (p *progressLog) values() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.fractions...)
}

func assertMonotonic(t *testing.T, fractions []float64) {
	t.Helper()
	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestObjectTransportSend(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 256<<10)

	var gotAuth, gotUpsert, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotUpsert = r.Header.Get("x-upsert")
		gotPath = r.URL.Path

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		assert.Equal(t, "a.png", header.Filename)
		gotBody, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"gallery/1700000000000-a.png"}`))
	}))
	defer srv.Close()

	tr := NewObjectTransport(ObjectConfig{BaseURL: srv.URL + "/", Bucket: "gallery"})
	progress := &progressLog{}

	url, err := tr.Send(context.Background(), FromBytes("a.png", payload), "1700000000000-a.png", "secret", progress.record)
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/object/public/gallery/1700000000000-a.png", url)
	assert.Equal(t, "/object/gallery/1700000000000-a.png", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "false", gotUpsert)
	assert.Equal(t, payload, gotBody)
	assertMonotonic(t, progress.values())
}

func TestObjectTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	tr := NewObjectTransport(ObjectConfig{BaseURL: srv.URL, Bucket: "gallery"})
	_, err := tr.Send(context.Background(), FromBytes("a.png", []byte("data")), "1-a.png", "secret", nil)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusConflict, terr.StatusCode)
	assert.Contains(t, terr.Body, "already exists")
}

func TestObjectTransportNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	tr := NewObjectTransport(ObjectConfig{BaseURL: base, Bucket: "gallery"})
	_, err := tr.Send(context.Background(), FromBytes("a.png", []byte("data")), "1-a.png", "secret", nil)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
}

func TestObjectTransportRemove(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewObjectTransport(ObjectConfig{BaseURL: srv.URL, Bucket: "gallery"})
	require.NoError(t, tr.Remove(context.Background(), "1-a.png", "secret"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/object/gallery/1-a.png", gotPath)
}

func TestMediaTransportSend(t *testing.T) {
	var preset, publicID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/video/upload", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		preset = r.FormValue("upload_preset")
		publicID = r.FormValue("public_id")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"` + publicID + `","secure_url":"https://cdn/raw.mov","duration":42.5}`))
	}))
	defer srv.Close()

	tr := NewMediaTransport(MediaConfig{
		APIURL:       srv.URL,
		DeliveryURL:  "https://res.example.com/",
		CloudName:    "demo",
		UploadPreset: "wedding_unsigned",
		Transform:    "c_limit,w_1280,q_auto,f_mp4",
		Folder:       "wishes",
	})

	url, err := tr.Send(context.Background(), FromBytes("clip.mov", []byte("movie")), "1700000000000-clip.mov", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "wedding_unsigned", preset)
	assert.Equal(t, "wishes/1700000000000-clip", publicID)
	assert.Equal(t, "https://res.example.com/demo/video/upload/c_limit,w_1280,q_auto,f_mp4/wishes/1700000000000-clip.mp4", url)
}

func TestMediaTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	tr := NewMediaTransport(MediaConfig{APIURL: srv.URL, CloudName: "demo"})
	_, err := tr.Send(context.Background(), FromBytes("clip.mp4", []byte("movie")), "1-clip.mp4", "", nil)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Equal(t, "Upload preset not found", terr.Body)
}

func TestProgressReaderUnknownTotal(t *testing.T) {
	progress := &progressLog{}
	pr := newProgressReader(strings.NewReader("some bytes"), 0, progress.record)

	_, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Empty(t, progress.values())

	pr.finish()
	assert.Equal(t, []float64{1}, progress.values())
}

func TestProgressReaderRewind(t *testing.T) {
	progress := &progressLog{}
	body, pr := wrapProgress(bytes.NewReader([]byte("0123456789")), 10, progress.record)

	buf := make([]byte, 5)
	_, _ = body.Read(buf)
	_, err := body.(io.Seeker).Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, _ = io.ReadAll(body)
	pr.finish()

	// Re-reading the first half after the rewind reports nothing new
	assert.Equal(t, []float64{0.5, 1}, progress.values())
}
