package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bucketlist/internal/domain"
	"bucketlist/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentStore implements repositories.DocumentStore on a single
// JSONB table. Every write bumps the row's revision.
type PostgresDocumentStore struct {
	pool      *pgxpool.Pool
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewDocumentStore creates a new document store
func NewDocumentStore(config *RepositoryConfig, txManager repositories.TransactionManager) repositories.DocumentStore {
	return &PostgresDocumentStore{
		pool:      config.Pool,
		txManager: txManager,
		logger:    config.Logger,
	}
}

// ListAll returns every document of the collection in insertion order
func (s *PostgresDocumentStore) ListAll(ctx context.Context, collection string) ([]repositories.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, revision, fields
		FROM %s
		WHERE collection = $1
		ORDER BY inserted_at, id
	`, DocumentsTable)

	executor := GetExecutor(ctx, s.pool)
	rows, err := executor.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []repositories.Document{}
	for rows.Next() {
		var (
			doc repositories.Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Revision, &raw); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		if doc.Fields, err = decodeFields(raw); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	return docs, nil
}

// Insert stores a new document and returns the generated ID
func (s *PostgresDocumentStore) Insert(ctx context.Context, collection string, fields repositories.Fields) (string, error) {
	payload, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (collection, fields)
		VALUES ($1, $2::jsonb)
		RETURNING id
	`, DocumentsTable)

	var id string
	executor := GetExecutor(ctx, s.pool)
	if err := executor.QueryRow(ctx, query, collection, payload).Scan(&id); err != nil {
		return "", documentError("insert", collection, "", err)
	}

	s.logger.Debug("document inserted", "collection", collection, "id", id)
	return id, nil
}

// Get returns one document
func (s *PostgresDocumentStore) Get(ctx context.Context, collection, id string) (*repositories.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, revision, fields
		FROM %s
		WHERE collection = $1 AND id = $2
	`, DocumentsTable)

	var (
		doc repositories.Document
		raw []byte
	)
	executor := GetExecutor(ctx, s.pool)
	err := executor.QueryRow(ctx, query, collection, id).Scan(&doc.ID, &doc.Revision, &raw)
	if err != nil {
		return nil, documentError("get", collection, id, err)
	}

	if doc.Fields, err = decodeFields(raw); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

// UpdateFields merges update.Set into the top level of the document and
// removes update.Delete keys. Other keys are left as stored.
func (s *PostgresDocumentStore) UpdateFields(ctx context.Context, collection, id string, update repositories.FieldUpdate) error {
	set := update.Set
	if set == nil {
		set = repositories.Fields{}
	}
	payload, err := encodeFields(set)
	if err != nil {
		return err
	}
	deletes := update.Delete
	if deletes == nil {
		deletes = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET fields = (fields || $3::jsonb) - $4::text[],
		    revision = revision + 1
		WHERE collection = $1 AND id = $2
		  AND ($5::bigint IS NULL OR revision = $5::bigint)
	`, DocumentsTable)

	executor := GetExecutor(ctx, s.pool)
	result, err := executor.Exec(ctx, query, collection, id, payload, deletes, update.ExpectedRevision)
	if err != nil {
		return documentError("update", collection, id, err)
	}

	if result.RowsAffected() == 0 {
		return s.missOrConflict(ctx, collection, id, update.ExpectedRevision)
	}
	return nil
}

// Delete removes a document permanently
func (s *PostgresDocumentStore) Delete(ctx context.Context, collection, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND id = $2`, DocumentsTable)

	executor := GetExecutor(ctx, s.pool)
	result, err := executor.Exec(ctx, query, collection, id)
	if err != nil {
		return documentError("delete", collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

// ArrayAppend appends value to the array under field in a single statement,
// so concurrent appends never overwrite each other. A missing or non-array
// field starts as an empty array.
func (s *PostgresDocumentStore) ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s element: %w", field, err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET fields = jsonb_set(
		        fields,
		        ARRAY[$3::text],
		        (CASE WHEN jsonb_typeof(fields->$3::text) = 'array'
		              THEN fields->$3::text
		              ELSE '[]'::jsonb END) || jsonb_build_array($4::jsonb),
		        true),
		    revision = revision + 1
		WHERE collection = $1 AND id = $2
	`, DocumentsTable)

	executor := GetExecutor(ctx, s.pool)
	result, err := executor.Exec(ctx, query, collection, id, field, string(payload))
	if err != nil {
		return documentError("append "+field, collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

// ArrayRemove drops the array elements whose key matches value. The row is
// locked for the read-filter-write so no concurrent writer interleaves.
func (s *PostgresDocumentStore) ArrayRemove(ctx context.Context, collection, id, field, key, value string) error {
	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		executor := GetExecutor(ctx, s.pool)

		lockQuery := fmt.Sprintf(`
			SELECT fields->$3::text
			FROM %s
			WHERE collection = $1 AND id = $2
			FOR UPDATE
		`, DocumentsTable)

		var raw []byte
		if err := executor.QueryRow(ctx, lockQuery, collection, id, field).Scan(&raw); err != nil {
			return documentError("lock", collection, id, err)
		}

		var elements []map[string]interface{}
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &elements); err != nil {
				return fmt.Errorf("decode %s.%s: %w", collection, field, err)
			}
		}

		kept := make([]map[string]interface{}, 0, len(elements))
		for _, el := range elements {
			if v, ok := el[key].(string); ok && v == value {
				continue
			}
			kept = append(kept, el)
		}

		payload, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", collection, field, err)
		}

		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET fields = jsonb_set(fields, ARRAY[$3::text], $4::jsonb, true),
			    revision = revision + 1
			WHERE collection = $1 AND id = $2
		`, DocumentsTable)

		if _, err := executor.Exec(ctx, updateQuery, collection, id, field, string(payload)); err != nil {
			return documentError("remove from "+field, collection, id, err)
		}
		return nil
	})
}

// missOrConflict tells a vanished document apart from a stale revision
// after an update matched no rows.
func (s *PostgresDocumentStore) missOrConflict(ctx context.Context, collection, id string, expected *int64) error {
	if expected == nil {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}

	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}

	return &domain.ConflictError{
		Message:      fmt.Sprintf("%s %s is at revision %d, expected %d", collection, id, doc.Revision, *expected),
		ResourceType: collection,
		ResourceID:   id,
	}
}

func encodeFields(fields repositories.Fields) (string, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(payload), nil
}

func decodeFields(raw []byte) (repositories.Fields, error) {
	fields := repositories.Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
