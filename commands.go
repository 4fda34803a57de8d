package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"personal-library/library"
)

func newExportCommand(a *app) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as JSON or into a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := library.LoadBooks(a.cfg.Storage.BooksFile)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				err = exportJSON(cmd.OutOrStdout(), out, books)
			case "sqlite":
				err = exportSQLite(out, books)
			default:
				return fmt.Errorf("unknown format %q (want json or sqlite)", format)
			}
			if err != nil {
				a.log.WithError(err).Errorw("Export failed", "format", format, "out", out)
				return err
			}

			a.log.Infow("Catalog exported", "format", format, "out", out, "books", len(books))
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d book(s) to %s\n", len(books), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format (json, sqlite)")
	cmd.Flags().StringVar(&out, "out", "-", "Output path; '-' writes JSON to stdout")
	return cmd
}

func exportJSON(stdout io.Writer, out string, books []library.Book) error {
	if out == "-" {
		return library.ExportJSON(stdout, books)
	}
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return err
	}
	if err := library.ExportJSON(f, books); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportSQLite(out string, books []library.Book) error {
	if out == "-" {
		return fmt.Errorf("sqlite export needs an --out path")
	}
	db, err := library.NewDatabase(out)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.ReplaceBooks(books)
}

func newSearchCommand(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search book names through the SQLite mirror",
		Long:  "Refreshes the SQLite mirror from the books file and prints the books whose name contains QUERY. Without a query every mirrored book is printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := library.NewDatabase(dbPath)
			if err != nil {
				return fmt.Errorf("open mirror: %w", err)
			}
			defer db.Close()

			if _, err := db.SyncFromFile(a.cfg.Storage.BooksFile); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(args) == 0 {
				books, err := db.GetAllBooks()
				if err != nil {
					return err
				}
				if len(books) == 0 {
					fmt.Fprintln(w, "There are no books.")
					return nil
				}
				fmt.Fprintf(w, "Catalog holds %d book(s):\n", len(books))
				printBooks(w, books)
				return nil
			}

			query := args[0]
			books, err := db.SearchBooks(query)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Fprintf(w, "No books found matching '%s'.\n", query)
				return nil
			}
			fmt.Fprintf(w, "Found %d book(s) matching '%s':\n", len(books), query)
			printBooks(w, books)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "catalog.db", "Path to the SQLite mirror")
	return cmd
}

func printBooks(w io.Writer, books []library.Book) {
	for _, b := range books {
		fmt.Fprintln(w, library.PrettyBook(b))
	}
}
