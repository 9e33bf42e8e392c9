package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/partmatch/backend/internal/domain"
)

// NormalizeFunc canonicalizes a property value; it is injected so the store
// stays agnostic of the matching package's normalization rules.
type NormalizeFunc func(string) string

// SimilarityFunc computes a normalized similarity in [0.0, 1.0].
type SimilarityFunc func(a, b string) float64

// SQLiteStore is a CatalogRepository backed by SQLite. Categories and
// property values are stored pre-normalized (value_norm) so stage queries
// can narrow on indexed columns; fuzzy predicates are applied to the scanned
// rows after the SQL narrowing.
type SQLiteStore struct {
	db         *sql.DB
	normalize  NormalizeFunc
	similarity SimilarityFunc
}

// schema contains the catalog schema. The category index and the
// (name, value_norm) index are what make progressive narrowing cheap.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    item_number TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    product_name TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

CREATE TABLE IF NOT EXISTS item_properties (
    item_number TEXT NOT NULL REFERENCES items(item_number) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    value_norm TEXT NOT NULL,
    PRIMARY KEY(item_number, name)
);

CREATE INDEX IF NOT EXISTS idx_item_properties_name_value ON item_properties(name, value_norm);
`

// OpenSQLite creates or opens a catalog database at the given path.
func OpenSQLite(path string, normalize NormalizeFunc, similarity SimilarityFunc) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging catalog database: %w", err)
	}

	return newSQLiteStore(db, normalize, similarity)
}

// OpenSQLiteMemory creates an in-memory catalog database (useful for testing).
func OpenSQLiteMemory(normalize NormalizeFunc, similarity SimilarityFunc) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory catalog database: %w", err)
	}
	// Each pooled connection would otherwise see its own empty in-memory
	// database.
	db.SetMaxOpenConns(1)
	return newSQLiteStore(db, normalize, similarity)
}

func newSQLiteStore(db *sql.DB, normalize NormalizeFunc, similarity SimilarityFunc) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running catalog migrations: %w", err)
	}
	return &SQLiteStore{db: db, normalize: normalize, similarity: similarity}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Query returns the items of a category that satisfy every predicate.
// Category and exact predicates narrow in SQL on indexed columns; fuzzy
// predicates narrow to items carrying the property in SQL, then compare
// similarities on the scanned rows.
func (s *SQLiteStore) Query(
	ctx context.Context,
	category string,
	predicates []domain.PropertyPredicate,
) ([]domain.InventoryItem, int, error) {
	query := `SELECT item_number, description, product_name, category FROM items WHERE category = ?`
	args := []interface{}{category}

	var fuzzy []domain.PropertyPredicate
	for _, p := range predicates {
		if p.Threshold >= 1.0 {
			query += ` AND item_number IN (SELECT item_number FROM item_properties WHERE name = ? AND value_norm = ?)`
			args = append(args, p.Name, p.Value)
		} else {
			query += ` AND item_number IN (SELECT item_number FROM item_properties WHERE name = ?)`
			args = append(args, p.Name)
			fuzzy = append(fuzzy, p)
		}
	}
	query += ` ORDER BY item_number`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ItemNumber, &item.Description, &item.ProductName, &item.Category); err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating items: %w", err)
	}
	if len(items) == 0 {
		return []domain.InventoryItem{}, 0, nil
	}

	values, norms, err := s.loadProperties(ctx, category)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.InventoryItem, 0, len(items))
	for _, item := range items {
		item.Properties = values[item.ItemNumber]
		if s.satisfiesFuzzy(norms[item.ItemNumber], fuzzy) {
			result = append(result, item)
		}
	}

	return result, len(result), nil
}

// loadProperties returns, per item of a category, the raw and normalized
// property values.
func (s *SQLiteStore) loadProperties(ctx context.Context, category string) (map[string]map[string]string, map[string]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.item_number, p.name, p.value, p.value_norm
		 FROM item_properties p
		 JOIN items i ON i.item_number = p.item_number
		 WHERE i.category = ?`, category)
	if err != nil {
		return nil, nil, fmt.Errorf("querying item properties: %w", err)
	}
	defer rows.Close()

	values := make(map[string]map[string]string)
	norms := make(map[string]map[string]string)
	for rows.Next() {
		var itemNumber, name, value, valueNorm string
		if err := rows.Scan(&itemNumber, &name, &value, &valueNorm); err != nil {
			return nil, nil, fmt.Errorf("scanning item property: %w", err)
		}
		if values[itemNumber] == nil {
			values[itemNumber] = make(map[string]string)
			norms[itemNumber] = make(map[string]string)
		}
		values[itemNumber][name] = value
		norms[itemNumber][name] = valueNorm
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating item properties: %w", err)
	}

	return values, norms, nil
}

func (s *SQLiteStore) satisfiesFuzzy(norms map[string]string, predicates []domain.PropertyPredicate) bool {
	for _, p := range predicates {
		value, ok := norms[p.Name]
		if !ok {
			return false
		}
		if s.similarity(p.Value, value) < p.Threshold {
			return false
		}
	}
	return true
}

// UpsertItems inserts or replaces catalog items and their properties in a
// single transaction. Property values are normalized at ingest so queries
// compare normalized-vs-normalized.
func (s *SQLiteStore) UpsertItems(ctx context.Context, items []domain.InventoryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if item.ItemNumber == "" {
			return fmt.Errorf("item with empty item number")
		}

		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO items (item_number, description, product_name, category)
			 VALUES (?, ?, ?, ?)`,
			item.ItemNumber, item.Description, item.ProductName, s.normalize(item.Category))
		if err != nil {
			return fmt.Errorf("upserting item %s: %w", item.ItemNumber, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM item_properties WHERE item_number = ?`, item.ItemNumber); err != nil {
			return fmt.Errorf("clearing properties for %s: %w", item.ItemNumber, err)
		}

		// Deterministic insert order keeps test output stable.
		names := make([]string, 0, len(item.Properties))
		for name := range item.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			value := item.Properties[name]
			_, err := tx.ExecContext(ctx,
				`INSERT INTO item_properties (item_number, name, value, value_norm)
				 VALUES (?, ?, ?, ?)`,
				item.ItemNumber, name, value, s.normalize(value))
			if err != nil {
				return fmt.Errorf("inserting property %s of %s: %w", name, item.ItemNumber, err)
			}
		}
	}

	return tx.Commit()
}

// Count returns the total number of catalog items.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}
