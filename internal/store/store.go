package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// serverTimestamp is the type of the ServerTimestamp sentinel.
type serverTimestamp struct{}

// ServerTimestamp, used as a field value in Create, is replaced with the
// backend's clock at write time.
var ServerTimestamp = serverTimestamp{}

// Document is a stored record: its id plus its fields as decoded JSON-like
// values (maps, slices, strings, float64, bool, time.Time).
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter restricts a query to documents whose field at Path equals Value.
type Filter struct {
	Path  string
	Value any
}

// Query selects documents in a collection.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int // 0 = unlimited
}

// FieldUpdate sets the value at a dotted path ("modulesDetails.2"). Only the
// addressed key is written; siblings at every level are left untouched.
type FieldUpdate struct {
	Path  string
	Value any
}

// DocumentStore is a collection-scoped document database.
type DocumentStore interface {
	// Create stores fields as a new document and returns its id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Query returns the matching documents in the requested order.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Update applies partial field updates atomically. Returns ErrNotFound
	// if the document does not exist.
	Update(ctx context.Context, collection, id string, updates []FieldUpdate) error

	// Delete removes the document. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, collection, id string) error

	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Driver is "sqlite" or "firestore".
	Driver string `koanf:"driver"`

	SQLitePath string `koanf:"sqlite_path"`

	FirestoreProject string `koanf:"firestore_project"`
	CredentialsFile  string `koanf:"credentials_file"`
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenSQLite(path)
	case "firestore":
		return OpenFirestore(ctx, cfg.FirestoreProject, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

var fieldPathRe = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

func checkPath(path string) error {
	if !fieldPathRe.MatchString(path) {
		return fmt.Errorf("invalid field path %q", path)
	}
	return nil
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. PATHFINDER_DB environment variable
// 2. $XDG_DATA_HOME/pathfinder/pathfinder.db
// 3. ~/.local/share/pathfinder/pathfinder.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PATHFINDER_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "pathfinder", "pathfinder.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// timestampLayout is fixed-width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
