package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Database is a SQLite mirror of the books file. The flat file stays the
// source of truth; the mirror exists for searching and for other tools.
type Database struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.insertBookStmt != nil {
		d.insertBookStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Book ids are not guaranteed unique, so file order is the key.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            position INTEGER PRIMARY KEY,
            id INTEGER NOT NULL,
            name TEXT NOT NULL,
            is_marked BOOLEAN NOT NULL DEFAULT 0,
            is_wishlist BOOLEAN NOT NULL DEFAULT 0,
            is_loaned BOOLEAN NOT NULL DEFAULT 0
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_id ON books(id);`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}

	for _, stmt := range stmts {
		var args []any
		if strings.Contains(stmt, "?") {
			args = append(args, schemaVersion)
		}
		if _, err := tx.Exec(stmt, args...); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	d.insertBookStmt, err = d.db.Prepare(
		`INSERT INTO books(position,id,name,is_marked,is_wishlist,is_loaned) VALUES(?,?,?,?,?,?)`)
	return err
}

// ---------------------------------------------------------------------------
// Mirror helpers
// ---------------------------------------------------------------------------

// ReplaceBooks swaps the mirrored catalog for books in one transaction.
func (d *Database) ReplaceBooks(books []Book) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return err
	}
	stmt := tx.Stmt(d.insertBookStmt)
	for i, b := range books {
		if _, err := stmt.Exec(i+1, b.ID, b.Name, b.IsMarked, b.IsWishlist, b.IsLoaned); err != nil {
			return fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

// GetAllBooks returns the mirrored books in file order.
func (d *Database) GetAllBooks() ([]Book, error) {
	return d.queryBooks(`SELECT id,name,is_marked,is_wishlist,is_loaned FROM books ORDER BY position`)
}

// SearchBooks returns books whose name contains q, ignoring ASCII case.
func (d *Database) SearchBooks(q string) ([]Book, error) {
	if strings.TrimSpace(q) == "" {
		return []Book{}, nil
	}
	return d.queryBooks(`
        SELECT id,name,is_marked,is_wishlist,is_loaned FROM books
        WHERE name LIKE ? ESCAPE '\'
        ORDER BY position`, "%"+escapeLike(q)+"%")
}

func (d *Database) queryBooks(query string, args ...any) ([]Book, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Name, &b.IsMarked, &b.IsWishlist, &b.IsLoaned); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SyncFromFile refreshes the mirror from the books file at pathFileBooks.
func (d *Database) SyncFromFile(pathFileBooks string) (int, error) {
	books, err := LoadBooks(pathFileBooks)
	if err != nil {
		return 0, err
	}
	if err := d.ReplaceBooks(books); err != nil {
		return 0, fmt.Errorf("sync mirror: %w", err)
	}
	return len(books), nil
}
