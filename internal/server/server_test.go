package server

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/store"
	"github.com/matzehuels/vastmap/pkg/tmap"
	"github.com/matzehuels/vastmap/pkg/vast"
)

func sampleDoc() *vast.Document {
	return &vast.Document{
		Format:  vast.Format,
		Version: vast.Version,
		Root: &vast.Node{Name: "app", Children: []*vast.Node{
			{Name: "big.o", Size: 90},
			{Name: "small.o", Size: 10},
		}},
	}
}

func newTestServer(t *testing.T, renderer bool, st store.Store) *Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil)
	runner.Caps.HasRenderer = renderer
	srv, err := New(Config{
		Runner:   runner,
		Document: sampleDoc(),
		Options:  pipeline.Options{Source: "vast.json"},
		Store:    st,
	})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func leafWidth(t *testing.T, body []byte, name string) float64 {
	t.Helper()
	doc, err := tmap.Unmarshal(body)
	require.NoError(t, err)
	for _, c := range doc.Treemap.Children {
		if c.Data.Name == name {
			return c.X1 - c.X0
		}
	}
	t.Fatalf("leaf %s not found", name)
	return 0
}

func TestNewRejectsInvalidDocument(t *testing.T) {
	doc := sampleDoc()
	doc.Version = "0.9"
	_, err := New(Config{Runner: pipeline.NewRunner(nil, nil), Document: doc})
	assert.Error(t, err)

	_, err = New(Config{Document: sampleDoc()})
	assert.Error(t, err)

	doc = sampleDoc()
	doc.Root.Children[0].Size = math.NaN()
	_, err = New(Config{Runner: pipeline.NewRunner(nil, nil), Document: doc})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestTMAPModes(t *testing.T) {
	srv := newTestServer(t, false, nil)

	rec := get(t, srv, "/tmap")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	bySize := leafWidth(t, rec.Body.Bytes(), "small.o")

	rec = get(t, srv, "/tmap?mode=count")
	require.Equal(t, http.StatusOK, rec.Code)
	byCount := leafWidth(t, rec.Body.Bytes(), "small.o")

	assert.Greater(t, byCount, bySize, "count mode gives equal weight to both leaves")
}

func TestTMAPInvalidMode(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/tmap?mode=area")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body.Code)
	assert.Contains(t, body.Error, "area")
	assert.NotEmpty(t, body.RequestID)
}

func TestSVG(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/treemap.svg")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, newTestServer(t, true, nil), "/treemap.svg?mode=size")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
}

func TestDocuments(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	result, err := pipeline.NewRunner(nil, nil).Execute(ctx, pipeline.Options{Document: sampleDoc(), Source: "vast.json"})
	require.NoError(t, err)
	key, err := pipeline.Publish(ctx, st, result, time.Hour)
	require.NoError(t, err)

	srv := newTestServer(t, false, st)

	rec := get(t, srv, "/documents/"+key)
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := tmap.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, result.Document.Timestamp, doc.Timestamp)

	rec = get(t, srv, "/documents/tmap:unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentsWithoutStore(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/documents/anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, false, nil)

	rec := get(t, srv, "/healthz")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestServeShutsDown(t *testing.T) {
	srv := newTestServer(t, false, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
