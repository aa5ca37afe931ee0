package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
)

// Dialect holds the statements for one SQL backend. Every dialect expects a
// documents(collection, doc_key, data, updated_at) table.
type Dialect struct {
	Name   string
	get    string
	set    string
	delete string
	query  string
}

var DialectPostgres = Dialect{
	Name: "postgres",
	get:  `SELECT data FROM documents WHERE collection = $1 AND doc_key = $2`,
	set: `INSERT INTO documents (collection, doc_key, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, doc_key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
	delete: `DELETE FROM documents WHERE collection = $1 AND doc_key = $2`,
	query:  `SELECT doc_key, data FROM documents WHERE collection = $1 AND data->>$2 = $3 ORDER BY doc_key`,
}

var DialectSQLite = Dialect{
	Name: "sqlite",
	get:  `SELECT data FROM documents WHERE collection = ? AND doc_key = ?`,
	set: `INSERT INTO documents (collection, doc_key, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, doc_key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
	delete: `DELETE FROM documents WHERE collection = ? AND doc_key = ?`,
	query:  `SELECT doc_key, data FROM documents WHERE collection = ? AND json_extract(data, '$.' || ?) = ? ORDER BY doc_key`,
}

// SQLStore stores documents as JSON rows.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	return s.get(ctx, s.db, collection, key)
}

func (s *SQLStore) get(ctx context.Context, db dbx.DBTX, collection, key string) (*Document, error) {
	var raw []byte
	err := db.QueryRowContext(ctx, s.dialect.get, collection, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	data, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Key: key, Data: data}, nil
}

func (s *SQLStore) Set(ctx context.Context, collection, key string, data map[string]any) error {
	return s.set(ctx, s.db, collection, key, data)
}

func (s *SQLStore) set(ctx context.Context, db dbx.DBTX, collection, key string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}
	if _, err := db.ExecContext(ctx, s.dialect.set, collection, key, string(raw)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update merges fields inside a transaction.
func (s *SQLStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		doc, err := s.get(ctx, tx, collection, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return common.ErrorNotFound
		}
		for k, v := range fields {
			doc.Data[k] = v
		}
		return s.set(ctx, tx, collection, key, doc.Data)
	})
}

func (s *SQLStore) Delete(ctx context.Context, collection, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.delete, collection, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStore) Query(ctx context.Context, collection, field, value string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.query, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		data, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{Key: key, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func decode(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return data, nil
}
