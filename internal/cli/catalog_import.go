// Package cli implements the binary's subcommands.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/libtrary/libtrary/internal/config"
	"github.com/libtrary/libtrary/internal/database"
	"github.com/libtrary/libtrary/internal/database/books"
	"github.com/libtrary/libtrary/internal/importers"
)

// CatalogImportCommand bulk-loads a catalog CSV from disk into the database.
type CatalogImportCommand struct {
	fs *flag.FlagSet

	filePath string
	dbPath   string
}

// NewCatalogImportCommand creates the command.
func NewCatalogImportCommand() *CatalogImportCommand {
	cmd := &CatalogImportCommand{
		fs: flag.NewFlagSet("catalog-import", flag.ContinueOnError),
	}
	cmd.fs.StringVar(&cmd.filePath, "file", "", "Path to the catalog CSV file (required)")
	cmd.fs.StringVar(&cmd.dbPath, "db", config.DefaultDatabasePath, "Path to the database file")
	return cmd
}

// ParseFlags parses command-line arguments.
func (c *CatalogImportCommand) ParseFlags(args []string) error {
	return c.fs.Parse(args)
}

// Run executes the import.
func (c *CatalogImportCommand) Run() error {
	if c.filePath == "" {
		return fmt.Errorf("-file is required")
	}

	file, err := os.Open(c.filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.filePath, err)
	}
	defer file.Close()

	parsed, skipped, err := importers.ParseCatalogCSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	db, err := database.NewDatabase(c.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	created, err := books.NewRepository(db.DB).CreateBatch(parsed)
	if err != nil {
		return fmt.Errorf("failed to create books: %w", err)
	}

	fmt.Printf("Imported %d book(s), skipped %d row(s)\n", created, skipped)
	return nil
}
