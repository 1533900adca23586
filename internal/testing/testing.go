// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// FakeHelper is a test double for [platforms.Helper]. Search results and
// errors are scripted per call.
type FakeHelper struct {
	TargetPlatform platforms.Platform
	Results        []platforms.Album
	Details        *platforms.Album
	Availability   platforms.Availability
	Err            error

	SearchCalls []string
}

func (h *FakeHelper) Platform() platforms.Platform { return h.TargetPlatform }

func (h *FakeHelper) LookupURL(platformID string) string {
	return "https://example.com/album/" + platformID
}

func (h *FakeHelper) Search(ctx context.Context, query string, startAt int) ([]platforms.Album, error) {
	h.SearchCalls = append(h.SearchCalls, query)
	if h.Err != nil {
		return nil, h.Err
	}
	return h.Results, nil
}

func (h *FakeHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*platforms.Album, error) {
	return platforms.SearchExactMatch(ctx, h, title, artists)
}

func (h *FakeHelper) AlbumDetails(ctx context.Context, platformID string) (*platforms.Album, error) {
	if h.Err != nil {
		return nil, h.Err
	}
	return h.Details, nil
}

func (h *FakeHelper) AlbumAvailability(ctx context.Context, platformID string) (platforms.Availability, error) {
	if h.Err != nil {
		return platforms.Unknown, h.Err
	}
	return h.Availability, nil
}

func (h *FakeHelper) SupportsPagination() bool   { return false }
func (h *FakeHelper) NextPageStart() (int, bool) { return 0, false }
func (h *FakeHelper) ResultsPerPage() int        { return 25 }

// OpenTestDB opens an in-memory SQLite database with the full schema
// applied. The handle is closed when the test finishes.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// A single connection keeps every statement on the same in-memory DB.
	db.SetMaxOpenConns(1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
