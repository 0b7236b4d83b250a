package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/law-makers/scrape/pkg/models"
)

// WriteCSV writes every table of every page as CSV rows prefixed with the
// page URL and the table's index on that page. Rows keep their own width.
func WriteCSV(w io.Writer, pages ...*models.PageContent) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"url", "table", "cells"}); err != nil {
		return err
	}

	for _, page := range pages {
		if page == nil {
			continue
		}
		for i, table := range page.Tables {
			for _, row := range table {
				record := append([]string{page.URL, strconv.Itoa(i)}, row...)
				if err := writer.Write(record); err != nil {
					return err
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the tables of pages to a CSV file. Returns an error on failure.
func SaveCSV(filepath string, pages ...*models.PageContent) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, pages...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
