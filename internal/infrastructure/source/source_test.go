package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

const envelopeDoc = `{
  "metadata": {"generated_at": "2025-09-01 10:00:00"},
  "schools": {
    "Lakeside Middle School": {
      "Band": {
        "years": ["2024-2025", "2025-2026"],
        "students": [
          {"id": "S001", "name": "John Smith", "years_enrolled": 2,
           "history": {"2024-2025": {"grade": "7", "course": "Band 7"},
                       "2025-2026": {"grade": 8, "course": "Band 8"}}}
        ]
      }
    }
  }
}`

const bareDoc = `{
  "March Middle School": {
    "Choir": {"years": ["2025-2026"], "students": []}
  }
}`

func TestDecode_Envelope(t *testing.T) {
	ds, meta, err := Decode([]byte(envelopeDoc))
	require.NoError(t, err)

	assert.Equal(t, "2025-09-01 10:00:00", meta.GeneratedAt)
	rec, ok := ds.Program(enrollment.LakesideSchool, "Band")
	require.True(t, ok)
	require.Len(t, rec.Students, 1)
	assert.Equal(t, "8", rec.Students[0].History["2025-2026"].Grade.Raw())
}

func TestDecode_BareDatasetFallback(t *testing.T) {
	ds, meta, err := Decode([]byte(bareDoc))
	require.NoError(t, err)

	assert.Empty(t, meta.GeneratedAt)
	assert.Equal(t, []string{"March Middle School"}, enrollment.SchoolNames(ds))
}

func TestDecode_Malformed(t *testing.T) {
	for name, doc := range map[string]string{
		"truncated": `{"Lakeside": {`,
		"array":     `[1, 2, 3]`,
		"null":      `null`,
		"bad shape": `{"Lakeside": {"Band": {"years": "2025"}}}`,
	} {
		_, _, err := Decode([]byte(doc))
		assert.ErrorIs(t, err, shared.ErrMalformedDataset, name)
		assert.True(t, shared.IsUnavailable(err), name)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(bareDoc))
	assert.Len(t, a, 32)
	assert.Equal(t, a, Fingerprint([]byte(bareDoc)))
	assert.NotEqual(t, a, Fingerprint([]byte(envelopeDoc)))
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	require.NoError(t, os.WriteFile(path, []byte(envelopeDoc), 0o644))

	src := New(Config{Location: path}, nil)
	assert.Equal(t, path, src.Describe())

	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, snap.Source)
	assert.Equal(t, Fingerprint([]byte(envelopeDoc)), snap.Fingerprint)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), 0, nil)
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	require.NoError(t, os.WriteFile(path, []byte(envelopeDoc), 0o644))

	_, err := NewFileSource(path, 16, nil).Load(context.Background())
	assert.ErrorContains(t, err, "exceeds 16 bytes")
}

func TestHTTPSource_Load(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bareDoc))
	}))
	defer srv.Close()

	src := New(Config{Location: srv.URL + "/dashboard_data.json"}, nil)
	_, isHTTP := src.(*HTTPSource)
	require.True(t, isHTTP)

	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Dataset.HasSchool("March Middle School"))
	assert.Equal(t, 1, calls)
}

func TestHTTPSource_Non2xxIsFailureWithoutRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(Config{Location: srv.URL}, srv.Client(), nil).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDatasetHTTPStatus)
	assert.ErrorContains(t, err, "status 404")
	assert.Equal(t, 1, calls)
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(Config{Location: srv.URL}, nil, nil).Load(context.Background())
	assert.ErrorIs(t, err, shared.ErrMalformedDataset)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.org/data.json"))
	assert.True(t, IsRemote("HTTP://example.org/data.json"))
	assert.False(t, IsRemote("./dashboard_data.json"))
}
