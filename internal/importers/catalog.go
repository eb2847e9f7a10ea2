// Package importers parses external catalog data into entities.
package importers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/libtrary/libtrary/internal/entities"
)

// requiredHeaders are the catalog CSV columns. Order does not matter and
// header matching is case-insensitive.
var requiredHeaders = []string{"isbn", "authors", "publication year", "title", "language"}

// ParseCatalogCSV reads a catalog CSV and returns the valid books along with
// the number of rows skipped. A malformed row does not abort the batch; a
// missing required header does.
func ParseCatalogCSV(r io.Reader) ([]entities.Book, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, h := range requiredHeaders {
		if _, ok := headerIndex[h]; !ok {
			return nil, 0, fmt.Errorf("missing required header: %s", h)
		}
	}

	var books []entities.Book
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		book, ok := convertRecord(record, headerIndex)
		if !ok {
			skipped++
			continue
		}
		books = append(books, book)
	}

	return books, skipped, nil
}

func convertRecord(record []string, headerIndex map[string]int) (entities.Book, bool) {
	isbn := getCSVValue(record, headerIndex, "isbn")
	authors := getCSVValue(record, headerIndex, "authors")
	yearValue := getCSVValue(record, headerIndex, "publication year")
	title := getCSVValue(record, headerIndex, "title")
	language := getCSVValue(record, headerIndex, "language")

	if isbn == "" || authors == "" || yearValue == "" || title == "" || language == "" {
		return entities.Book{}, false
	}

	year, err := strconv.Atoi(yearValue)
	if err != nil {
		return entities.Book{}, false
	}

	return entities.Book{
		ISBN:            isbn,
		Authors:         authors,
		PublicationYear: year,
		Title:           title,
		Language:        language,
		RentalStatus:    entities.RentalStatusAvailable,
	}, true
}

func getCSVValue(record []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
