package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Every mutation other than an append rewrites the whole file. Each call
// opens, reads or writes, and closes the file before returning.

// LoadBooks decodes every book in path. A missing file is an empty catalog.
func LoadBooks(path string) ([]Book, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open books file: %w", err)
	}
	defer f.Close()

	books := []Book{}
	rr := NewRecordReader(f)
	for rr.More() {
		b, err := rr.ReadBook()
		if err != nil {
			return nil, fmt.Errorf("read book %d from %s: %w", len(books)+1, path, err)
		}
		books = append(books, b)
	}
	if err := rr.Err(); err != nil {
		return nil, fmt.Errorf("read books file: %w", err)
	}
	return books, nil
}

// LoadUsers decodes every user in path. A missing file yields no users.
func LoadUsers(path string) ([]User, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	users := []User{}
	rr := NewRecordReader(f)
	for rr.More() {
		u, err := rr.ReadUser()
		if err != nil {
			return nil, fmt.Errorf("read user %d from %s: %w", len(users)+1, path, err)
		}
		users = append(users, u)
	}
	if err := rr.Err(); err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return users, nil
}

// AppendBook adds one record to the end of path, creating it if needed.
func AppendBook(path string, b Book) error {
	return appendRecord(path, func(rw *RecordWriter) error { return rw.WriteBook(b) })
}

// AppendUser adds one record to the end of path, creating it if needed.
func AppendUser(path string, u User) error {
	return appendRecord(path, func(rw *RecordWriter) error { return rw.WriteUser(u) })
}

// RewriteBooks truncates path and writes books in the given order.
func RewriteBooks(path string, books []Book) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create books file: %w", err)
	}

	rw := NewRecordWriter(f)
	for _, b := range books {
		if err := rw.WriteBook(b); err != nil {
			f.Close()
			return fmt.Errorf("write book %d: %w", b.ID, err)
		}
	}
	if err := rw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush books file: %w", err)
	}
	return f.Close()
}

func appendRecord(path string, write func(*RecordWriter) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", path, err)
	}

	rw := NewRecordWriter(f)
	if err := write(rw); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", path, err)
	}
	if err := rw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// Ensure directory exists so first-run succeeds.
func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	return nil
}
