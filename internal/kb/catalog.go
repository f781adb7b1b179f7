package kb

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryCatalog is the catalog path for a process-local, in-memory database.
const MemoryCatalog = ":memory:"

// Catalog is a SQLite full-text index over knowledge base passages used for
// keyword lookups. It complements the embedding index, which only answers
// similarity queries.
type Catalog struct {
	db *sql.DB
}

// SourceStat counts the passages contributed by one knowledge base file.
type SourceStat struct {
	Source   string `json:"source"`
	Passages int    `json:"passages"`
}

// OpenCatalog opens or creates a catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = MemoryCatalog
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	// One connection: SQLite serializes writes, and each :memory: connection
	// would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS passages (
			idx INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			chunk_idx INTEGER NOT NULL,
			text TEXT NOT NULL
		);

		-- Standalone FTS table keyed by rowid = passages.idx
		CREATE VIRTUAL TABLE IF NOT EXISTS passages_fts USING fts5(
			text,
			source
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild replaces the catalog contents with passages and returns the count stored.
func (c *Catalog) Rebuild(passages []Passage) (int, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM passages"); err != nil {
		return 0, fmt.Errorf("clearing passages table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM passages_fts"); err != nil {
		return 0, fmt.Errorf("clearing passages_fts table: %w", err)
	}

	passageStmt, err := tx.Prepare(`INSERT INTO passages (idx, source, chunk_idx, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing passage insert: %w", err)
	}
	defer passageStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO passages_fts (rowid, text, source) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, p := range passages {
		if _, err := passageStmt.Exec(p.Index, p.Source, p.ChunkIndex, p.Text); err != nil {
			return 0, fmt.Errorf("inserting passage %d: %w", p.Index, err)
		}
		if _, err := ftsStmt.Exec(p.Index, p.Text, sourceTerms(p.Source)); err != nil {
			return 0, fmt.Errorf("inserting fts for passage %d: %w", p.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog: %w", err)
	}
	return len(passages), nil
}

// Search returns passages matching query, best match first.
func (c *Catalog) Search(query string, limit int) ([]Passage, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" || limit <= 0 {
		return []Passage{}, nil
	}

	rows, err := c.db.Query(`
		SELECT p.idx, p.source, p.chunk_idx, p.text
		FROM passages_fts
		JOIN passages p ON p.idx = passages_fts.rowid
		WHERE passages_fts MATCH ?
		ORDER BY passages_fts.rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// List returns every passage in index order.
func (c *Catalog) List() ([]Passage, error) {
	rows, err := c.db.Query(`SELECT idx, source, chunk_idx, text FROM passages ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("listing passages: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// Count returns the number of passages in the catalog.
func (c *Catalog) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// Sources returns per-file passage counts ordered by file name.
func (c *Catalog) Sources() ([]SourceStat, error) {
	rows, err := c.db.Query(`SELECT source, COUNT(*) FROM passages GROUP BY source ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	stats := []SourceStat{}
	for rows.Next() {
		var s SourceStat
		if err := rows.Scan(&s.Source, &s.Passages); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func scanPassages(rows *sql.Rows) ([]Passage, error) {
	passages := []Passage{}
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.Index, &p.Source, &p.ChunkIndex, &p.Text); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

// sourceTerms turns "heart_failure.txt" into "heart failure" so file names are searchable.
func sourceTerms(source string) string {
	return strings.ReplaceAll(strings.TrimSuffix(source, ".txt"), "_", " ")
}

// ftsKeywords are the bare words FTS5 parses as operators.
var ftsKeywords = map[string]bool{"AND": true, "OR": true, "NOT": true, "NEAR": true}

// prepareFTSQuery quotes queries containing FTS5 operator characters or
// keywords so they are matched as a phrase instead of parsed as syntax.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}
	if strings.ContainsAny(query, "\"*+-:(){}[]^~./,") || hasFTSKeyword(query) {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}
	return query
}

func hasFTSKeyword(query string) bool {
	for _, field := range strings.Fields(query) {
		if ftsKeywords[field] {
			return true
		}
	}
	return false
}
