package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"personal-library/library"
)

func main() {
	if err := newImportCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCommand() *cobra.Command {
	var (
		source    string
		booksFile string
		replace   bool
	)

	cmd := &cobra.Command{
		Use:   "import_books",
		Short: "Append book names from a text or JSON file to the books file",
		Long: "Each non-blank line of a text file becomes a new book. A .json file " +
			"is read as a catalog export and every book name in it is added.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), source, booksFile, replace)
		},
	}

	cmd.Flags().StringVar(&source, "file", "", "Source file (.txt or .json)")
	cmd.Flags().StringVar(&booksFile, "books", "books.bin", "Books file to append to")
	cmd.Flags().BoolVar(&replace, "replace", false, "Empty the books file before importing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(w io.Writer, source, booksFile string, replace bool) error {
	if replace {
		fmt.Fprintln(w, "Clearing existing books file...")
		if err := library.RewriteBooks(booksFile, nil); err != nil {
			return fmt.Errorf("clear books file: %w", err)
		}
	}

	names, err := readNames(source)
	if err != nil {
		return err
	}

	// AddBook prints nothing, so the console only needs somewhere to write.
	mgr := library.NewLibraryManager(library.NewConsole(strings.NewReader(""), w, false))

	fmt.Fprintf(w, "Importing books from %s...\n", source)
	successCount := 0
	for _, name := range names {
		id, err := mgr.GetNewID(booksFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Importing: %s... ", name)
		if _, err := mgr.AddBook(name, booksFile); err != nil {
			fmt.Fprintf(w, "ERROR - %v\n", err)
			return err
		}
		fmt.Fprintf(w, "SUCCESS (ID: %d)\n", id)
		successCount++
	}

	fmt.Fprintf(w, "\nImport complete!\n")
	fmt.Fprintf(w, "Successfully imported: %d books\n", successCount)
	return nil
}

func readNames(source string) ([]string, error) {
	f, err := os.Open(filepath.Clean(source))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(source), ".json") {
		books, err := library.ParseJSON(f)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(books))
		for _, b := range books {
			names = append(names, b.Name)
		}
		return names, nil
	}

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, sc.Err()
}
