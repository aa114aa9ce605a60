// Package source loads the dashboard dataset from a local file or an HTTP URL.
// Each Load performs exactly one read or one GET; retrying is the caller's
// decision (the dashboard only retries on an explicit reload).
package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
	"github.com/arts-recruitment/dashboard/pkg/logger"
	"github.com/arts-recruitment/dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config describes where the dataset lives.
type Config struct {
	// Location is a file path or an http(s):// URL.
	Location string

	// Timeout bounds a single HTTP GET. Ignored for files.
	Timeout time.Duration

	// MaxBytes caps the document size. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// DefaultMaxBytes is the document size limit used when Config.MaxBytes is zero.
const DefaultMaxBytes = 64 << 20

// DefaultConfig returns a config pointing at the dataset next to the UI.
func DefaultConfig() Config {
	return Config{
		Location: "dashboard_data.json",
		Timeout:  15 * time.Second,
		MaxBytes: DefaultMaxBytes,
	}
}

// New returns an HTTP source for http(s) locations and a file source otherwise.
func New(cfg Config, log *logger.Logger) enrollment.Source {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if IsRemote(cfg.Location) {
		return NewHTTPSource(cfg, nil, log)
	}
	return NewFileSource(cfg.Location, cfg.MaxBytes, log)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// ══════════════════════════════════════════════════════════════════════════════
// FILE SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// FileSource reads the dataset from disk.
type FileSource struct {
	path     string
	maxBytes int64
	log      *logger.Logger
}

// NewFileSource creates a file source.
func NewFileSource(path string, maxBytes int64, log *logger.Logger) *FileSource {
	if log == nil {
		log = logger.Nop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileSource{path: path, maxBytes: maxBytes, log: log.With(logger.Component("source.file"))}
}

// Describe returns the file path.
func (s *FileSource) Describe() string {
	return s.path
}

// Load reads and decodes the file.
func (s *FileSource) Load(ctx context.Context) (*enrollment.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.path, err)
	}

	snap, err := NewSnapshot(data, s.path)
	if err != nil {
		return nil, err
	}

	s.log.Debug("dataset read",
		logger.String("path", s.path),
		logger.Int("bytes", len(data)),
		logger.Int("schools", len(snap.Dataset)),
	)
	return snap, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// HTTPSource fetches the dataset with a single GET.
type HTTPSource struct {
	url        string
	maxBytes   int64
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPSource creates an HTTP source. A nil client gets one with cfg.Timeout.
func NewHTTPSource(cfg Config, client *http.Client, log *logger.Logger) *HTTPSource {
	if log == nil {
		log = logger.Nop()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPSource{
		url:        cfg.Location,
		maxBytes:   maxBytes,
		httpClient: client,
		log:        log.With(logger.Component("source.http")),
	}
}

// Describe returns the URL.
func (s *HTTPSource) Describe() string {
	return s.url
}

// Load fetches and decodes the document. Any non-2xx status is a failure.
func (s *HTTPSource) Load(ctx context.Context) (*enrollment.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, shared.WrapError("dataset", "Fetch", shared.ErrExternalService,
			"unexpected HTTP status", fmt.Errorf("GET %s: status %d", s.url, resp.StatusCode))
	}

	data, err := readLimited(resp.Body, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	snap, err := NewSnapshot(data, s.url)
	if err != nil {
		return nil, err
	}

	s.log.Debug("dataset fetched",
		logger.String("url", s.url),
		logger.Int("status", resp.StatusCode),
		logger.Latency(time.Since(start)),
	)
	return snap, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DECODING
// ══════════════════════════════════════════════════════════════════════════════

// envelope is the generator's output format.
type envelope struct {
	Metadata *enrollment.Metadata `json:"metadata"`
	Schools  json.RawMessage      `json:"schools"`
}

// Decode parses a dataset document. The {metadata, schools} envelope is used
// when both keys are present; anything else is decoded as a bare dataset.
func Decode(data []byte) (enrollment.Dataset, enrollment.Metadata, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, enrollment.Metadata{}, malformed(err)
	}

	body := data
	var meta enrollment.Metadata
	if env.Metadata != nil && len(env.Schools) > 0 && !bytes.Equal(env.Schools, []byte("null")) {
		body = env.Schools
		meta = *env.Metadata
	}

	var ds enrollment.Dataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return nil, enrollment.Metadata{}, malformed(err)
	}
	if ds == nil {
		return nil, enrollment.Metadata{}, malformed(fmt.Errorf("document is null"))
	}
	return ds, meta, nil
}

// Fingerprint returns a short content hash of the raw document.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// NewSnapshot decodes raw bytes into a snapshot stamped with the current time.
func NewSnapshot(data []byte, origin string) (*enrollment.Snapshot, error) {
	ds, meta, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &enrollment.Snapshot{
		Dataset:     ds,
		Metadata:    meta,
		Fingerprint: Fingerprint(data),
		Source:      origin,
		LoadedAt:    timeutil.Now(),
	}, nil
}

func malformed(err error) error {
	return shared.WrapError("dataset", "Decode", shared.ErrInvalidFormat, "malformed dataset", err)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("document exceeds %d bytes", limit)
	}
	return data, nil
}
