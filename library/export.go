package library

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportJSON writes books as an indented JSON array.
func ExportJSON(w io.Writer, books []Book) error {
	if books == nil {
		books = []Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ParseJSON reads an array written by ExportJSON.
func ParseJSON(r io.Reader) ([]Book, error) {
	var books []Book
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}
