package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"devdesk/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// writeBooks renders books in the requested format.
func writeBooks(w io.Writer, format string, books []models.Book) error {
	if format == formatTable {
		return writeBookTable(w, books)
	}
	if books == nil {
		books = []models.Book{}
	}
	return encode(w, format, books)
}

// result is the machine-readable answer of add, edit and delete.
type result struct {
	Action string `json:"action" yaml:"action"`
	ID     int64  `json:"id" yaml:"id"`
}

func writeResult(w io.Writer, format, action string, id int64) error {
	if format == formatTable {
		_, err := fmt.Fprintf(w, "%s book %d\n", action, id)
		return err
	}
	return encode(w, format, result{Action: action, ID: id})
}

func encode(w io.Writer, format string, data any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeBookTable(w io.Writer, books []models.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tISBN\tPUBLISHED\tQTY")
	for _, b := range books {
		isbn, published := "-", "-"
		if b.ISBN != nil {
			isbn = *b.ISBN
		}
		if b.PublishDate != nil {
			published = b.PublishDate.Format(models.DateLayout)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, isbn, published, strconv.Itoa(b.Quantity))
	}
	return tw.Flush()
}
