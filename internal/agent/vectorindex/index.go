// Package vectorindex maintains a small sqlite-vec index over the schema-doc
// chunks so the agent can retrieve the tables relevant to a question by
// semantic similarity instead of stuffing all table docs into the prompt.
package vectorindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Entry is one chunk to index.
type Entry struct {
	TableName string
	Content   string
}

// Result is one search hit, closest first.
type Result struct {
	TableName string
	Content   string
	Score     float64
}

// Embedder turns texts into vectors.  Satisfied by the llm package provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is a vec0-backed similarity index.  An empty path keeps it in memory,
// which suits the schema docs' size; a file path persists across runs.
type Index struct {
	db  *sql.DB
	dim int
}

func Open(path string, dim int) (*Index, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "create index directory")
		}
		dsn = path
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "open index database")
	}
	db.SetMaxOpenConns(1)

	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS doc_chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_name TEXT NOT NULL,
		content TEXT NOT NULL
	);
	CREATE VIRTUAL TABLE IF NOT EXISTS vec_doc_chunks USING vec0(
		chunk_id INTEGER PRIMARY KEY,
		embedding float[%d]
	);`, dim)
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "create index schema")
	}
	return &Index{db: db, dim: dim}, nil
}

func (x *Index) Close() error {
	return x.db.Close()
}

// Count returns how many chunks are indexed.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doc_chunks").Scan(&n); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "count index chunks")
	}
	return n, nil
}

// Build embeds and indexes the entries, replacing any previous content.
func (x *Index) Build(ctx context.Context, entries []Entry, embedder Embedder) error {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Content
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(entries) {
		return apperrors.New(apperrors.CodeAgentIndexFailed,
			fmt.Sprintf("embedder returned %d vectors for %d entries", len(vectors), len(entries)))
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "begin index rebuild")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM doc_chunks"); err != nil {
		return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "clear index chunks")
	}
	if _, err := tx.Exec("DELETE FROM vec_doc_chunks"); err != nil {
		return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "clear index vectors")
	}

	for i, e := range entries {
		if len(vectors[i]) != x.dim {
			return apperrors.New(apperrors.CodeAgentIndexFailed,
				fmt.Sprintf("embedding for %s has dimension %d, want %d", e.TableName, len(vectors[i]), x.dim))
		}
		res, err := tx.Exec("INSERT INTO doc_chunks (table_name, content) VALUES (?, ?)", e.TableName, e.Content)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "insert chunk for "+e.TableName)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "resolve chunk id")
		}
		if _, err := tx.Exec("INSERT INTO vec_doc_chunks (chunk_id, embedding) VALUES (?, ?)",
			id, serializeFloat32(vectors[i])); err != nil {
			return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "insert vector for "+e.TableName)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "commit index rebuild")
	}
	return nil
}

// Search returns the k nearest chunks for the query vector, closest first.
// Score is 1-distance so higher means more similar.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT d.table_name, d.content, v.distance
		FROM vec_doc_chunks v
		JOIN doc_chunks d ON d.id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`,
		serializeFloat32(query), k)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "vector search")
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var distance float64
		if err := rows.Scan(&r.TableName, &r.Content, &distance); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "scan search row")
		}
		r.Score = 1.0 - distance
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeAgentIndexFailed, "iterate search rows")
	}
	return results, nil
}

func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
