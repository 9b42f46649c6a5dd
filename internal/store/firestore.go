package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is a DocumentStore backed by Cloud Firestore. Dotted field
// paths map directly onto Firestore field paths, so partial updates are
// native merges.
type FirestoreStore struct {
	client *firestore.Client
}

// OpenFirestore connects to project. An empty credentialsFile uses
// application default credentials (or FIRESTORE_EMULATOR_HOST when set).
func OpenFirestore(ctx context.Context, project, credentialsFile string) (*FirestoreStore, error) {
	if project == "" {
		return nil, errors.New("firestore project is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestoreValues(fields))
	if err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		if err := checkPath(f.Path); err != nil {
			return nil, err
		}
		query = query.WherePath(fieldPath(f.Path), "==", f.Value)
	}
	if q.OrderBy != "" {
		if err := checkPath(q.OrderBy); err != nil {
			return nil, err
		}
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderByPath(fieldPath(q.OrderBy), dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query documents: %w", err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	fu := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		if err := checkPath(u.Path); err != nil {
			return err
		}
		fu = append(fu, firestore.Update{
			FieldPath: fieldPath(u.Path),
			Value:     toFirestoreValue(u.Value),
		})
	}

	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, fu); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func fieldPath(path string) firestore.FieldPath {
	return firestore.FieldPath(strings.Split(path, "."))
}

func toFirestoreValues(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = toFirestoreValue(v)
	}
	return out
}

func toFirestoreValue(v any) any {
	switch t := v.(type) {
	case serverTimestamp:
		return firestore.ServerTimestamp
	case time.Time:
		return t.UTC()
	case map[string]any:
		return toFirestoreValues(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = toFirestoreValue(t[i])
		}
		return out
	default:
		return v
	}
}
