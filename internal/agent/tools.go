package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/patentlake/internal/agent/llm"
	"github.com/turtacn/patentlake/internal/agent/schemadoc"
	"github.com/turtacn/patentlake/internal/agent/vectorindex"
	"github.com/turtacn/patentlake/internal/infrastructure/database/sqlite"
	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// maxQueryRows caps run_query output so one broad SELECT cannot blow the
// model's context window.
const maxQueryRows = 50

// Tool is one capability the model can invoke by name.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input string) (string, error)
}

func buildTools(dbPath string, provider llm.Provider, index *vectorindex.Index, topK int) []Tool {
	return []Tool{
		{
			Name:        "list_tables",
			Description: "List all tables in the patent database. Input: ignored.",
			Run: func(_ context.Context, _ string) (string, error) {
				return listTables(dbPath)
			},
		},
		{
			Name:        "table_schema",
			Description: "Get the CREATE TABLE statement and column list for one table. Input: a table name.",
			Run: func(_ context.Context, input string) (string, error) {
				return tableSchema(dbPath, strings.TrimSpace(input))
			},
		},
		{
			Name:        "run_query",
			Description: "Run a read-only SQL query against the patent database. Input: a single SELECT statement.",
			Run: func(_ context.Context, input string) (string, error) {
				return runQuery(dbPath, input)
			},
		},
		{
			Name:        "schema_doc_search",
			Description: "Semantic search over the schema documentation. Input: a question about tables or columns.",
			Run: func(ctx context.Context, input string) (string, error) {
				return schemaDocSearch(ctx, provider, index, input, topK)
			},
		},
		{
			Name:        "extended_schema",
			Description: "Get the live schema of one table combined with its business documentation. Input: a table name.",
			Run: func(_ context.Context, input string) (string, error) {
				return extendedSchema(dbPath, strings.TrimSpace(input))
			},
		},
	}
}

func listTables(dbPath string) (string, error) {
	var names []string
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		rows, err := s.Query(
			"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeAgentToolFailed, "list tables")
	}
	return strings.Join(names, ", "), nil
}

func tableSchema(dbPath, table string) (string, error) {
	var ddl string
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		return s.QueryRow(
			"SELECT sql FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&ddl)
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeAgentToolFailed, "no such table: "+table)
	}

	columns, err := describeColumns(dbPath, table)
	if err != nil {
		return "", err
	}
	return ddl + "\n\nColumns:\n" + columns, nil
}

func describeColumns(dbPath, table string) (string, error) {
	var lines []string
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		rows, err := s.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				cid        int
				name, typ  string
				notNull    int
				defaultVal interface{}
				pk         int
			)
			if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
				return err
			}
			line := fmt.Sprintf(" - %s %s", name, typ)
			if pk > 0 {
				line += " PRIMARY KEY"
			}
			lines = append(lines, line)
		}
		return rows.Err()
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeAgentToolFailed, "describe table "+table)
	}
	return strings.Join(lines, "\n"), nil
}

// runQuery executes one read-only statement.  Anything that is not a plain
// SELECT (or a WITH ... SELECT) is rejected before touching the database.
func runQuery(dbPath, query string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", apperrors.New(apperrors.CodeAgentQueryRejected,
			"only SELECT queries are allowed")
	}

	var out strings.Builder
	err := sqlite.WithReadOnlySession(dbPath, func(s *sqlite.Session) error {
		rows, err := s.Query(trimmed)
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		out.WriteString(strings.Join(cols, " | "))
		out.WriteString("\n")

		count := 0
		for rows.Next() {
			values := make([]interface{}, len(cols))
			ptrs := make([]interface{}, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			cells := make([]string, len(cols))
			for i, v := range values {
				switch x := v.(type) {
				case nil:
					cells[i] = "NULL"
				case []byte:
					cells[i] = string(x)
				default:
					cells[i] = fmt.Sprint(x)
				}
			}
			out.WriteString(strings.Join(cells, " | "))
			out.WriteString("\n")
			count++
			if count >= maxQueryRows {
				out.WriteString(fmt.Sprintf("... (truncated at %d rows)\n", maxQueryRows))
				break
			}
		}
		if count == 0 {
			out.WriteString("(no rows)\n")
		}
		return rows.Err()
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeAgentQueryRejected) {
			return "", err
		}
		return "", apperrors.Wrap(err, apperrors.CodeAgentToolFailed, "run query")
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

func schemaDocSearch(ctx context.Context, provider llm.Provider, index *vectorindex.Index, query string, topK int) (string, error) {
	vectors, err := provider.Embed(ctx, []string{query})
	if err != nil {
		return "", err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return "", apperrors.New(apperrors.CodeAgentToolFailed, "embedder returned no vector for query")
	}

	results, err := index.Search(ctx, vectors[0], topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No relevant schema snippet found.", nil
	}

	var blocks []string
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("score=%.2f, table_name=%s\nContent:\n%s", r.Score, r.TableName, r.Content))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func extendedSchema(dbPath, table string) (string, error) {
	live, err := tableSchema(dbPath, table)
	if err != nil {
		return "", err
	}
	return live + "\n\n=== Additional Business Doc ===\n" + schemadoc.CommentaryFor(table), nil
}
