package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const documentsTable = "documents"

// SQLiteStore is a DocumentStore backed by a single SQLite table. Document
// fields live in a JSON column; partial updates use json_set so one
// statement rewrites only the addressed keys.
type SQLiteStore struct {
	db  *sql.DB
	drv *entsql.Driver
	now func() time.Time
}

// OpenSQLite opens (and migrates) the SQLite database at dsn.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in effect and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		drv: entsql.OpenDB(dialect.SQLite, db),
		now: time.Now,
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.drv.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS documents_collection_created_at ON documents (collection, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.exec(ctx, stmt, []any{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	now := formatTimestamp(s.now())

	data, err := json.Marshal(resolveValues(fields, now))
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(documentsTable).
		Columns("collection", "id", "data", "created_at").
		Values(collection, id, string(data), now).
		Query()
	if _, err := s.exec(ctx, query, args); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "data").
		From(b.Table(documentsTable)).
		Where(entsql.And(
			entsql.EQ("collection", collection),
			entsql.EQ("id", id),
		)).
		Query()

	docs, err := s.queryDocuments(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (s *SQLiteStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	preds := []*entsql.Predicate{entsql.EQ("collection", collection)}
	for _, f := range q.Filters {
		if err := checkPath(f.Path); err != nil {
			return nil, err
		}
		path, value := jsonPath(f.Path), f.Value
		preds = append(preds, entsql.P(func(b *entsql.Builder) {
			b.WriteString("json_extract(data, ").Arg(path).WriteString(") = ").Arg(value)
		}))
	}

	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "data").
		From(b.Table(documentsTable)).
		Where(entsql.And(preds...)).
		Query()

	var tail strings.Builder
	if q.OrderBy != "" {
		if err := checkPath(q.OrderBy); err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		// rowid breaks ties between documents written in the same instant.
		fmt.Fprintf(&tail, " ORDER BY json_extract(data, ?) %s, rowid %s", dir, dir)
		args = append(args, jsonPath(q.OrderBy))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&tail, " LIMIT %d", q.Limit)
	}

	return s.queryDocuments(ctx, query+tail.String(), args)
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	now := formatTimestamp(s.now())
	var set strings.Builder
	set.WriteString("json_set(data")
	args := make([]any, 0, len(updates)*2+2)
	for _, u := range updates {
		if err := checkPath(u.Path); err != nil {
			return err
		}
		raw, err := json.Marshal(resolveValue(u.Value, now))
		if err != nil {
			return fmt.Errorf("marshal %s: %w", u.Path, err)
		}
		set.WriteString(", ?, json(?)")
		args = append(args, jsonPath(u.Path), string(raw))
	}
	set.WriteString(")")
	args = append(args, collection, id)

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	// json_set creates missing parents but leaves a leaf unset when its
	// parent exists with a non-object value, such as null.
	for _, u := range updates {
		for _, parent := range parentPaths(u.Path) {
			p := jsonPath(parent)
			repair := "UPDATE documents SET data = json_set(data, ?, json('{}')) " +
				"WHERE collection = ? AND id = ? AND json_type(data, ?) <> 'object'"
			var res sql.Result
			if err := tx.Exec(ctx, repair, []any{p, collection, id, p}, &res); err != nil {
				return fmt.Errorf("prepare %s: %w", parent, err)
			}
		}
	}

	query := "UPDATE documents SET data = " + set.String() + " WHERE collection = ? AND id = ?"
	var res sql.Result
	if err := tx.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// parentPaths lists the proper prefixes of a dotted path, shallowest first:
// "a.b.c" yields "a" and "a.b".
func parentPaths(path string) []string {
	segs := strings.Split(path, ".")
	out := make([]string, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		out = append(out, strings.Join(segs[:i], "."))
	}
	return out
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(documentsTable).
		Where(entsql.And(
			entsql.EQ("collection", collection),
			entsql.EQ("id", id),
		)).
		Query()
	res, err := s.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) queryDocuments(ctx context.Context, query string, args []any) ([]Document, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// jsonPath converts "a.b.2" into the SQLite JSON path `$."a"."b"."2"`.
// Every segment is quoted so numeric keys address object members, not
// array elements.
func jsonPath(path string) string {
	segs := strings.Split(path, ".")
	var b strings.Builder
	b.WriteString("$")
	for _, s := range segs {
		b.WriteString(`."`)
		b.WriteString(s)
		b.WriteString(`"`)
	}
	return b.String()
}

// resolveValues replaces ServerTimestamp sentinels and time values with the
// fixed-width timestamp format, recursively.
func resolveValues(fields map[string]any, now string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = resolveValue(v, now)
	}
	return out
}

func resolveValue(v any, now string) any {
	switch t := v.(type) {
	case serverTimestamp:
		return now
	case time.Time:
		return formatTimestamp(t)
	case map[string]any:
		return resolveValues(t, now)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = resolveValue(t[i], now)
		}
		return out
	default:
		return v
	}
}

// applyPragmas configures SQLite for a single-process service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
