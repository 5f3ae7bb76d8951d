// Package codec converts the quote collection to and from the JSON
// documents users export and import.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/quoter/internal/quote"
)

// ErrEmptyImport is returned when no entry in a document survives validation.
var ErrEmptyImport = errors.New("import contains no valid quotes")

// ParseError reports a document that is not a JSON array.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse import: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Report summarizes an import.
type Report struct {
	Total      int // entries in the document
	Valid      int // entries that passed validation
	Skipped    int // entries rejected by validation
	Duplicates int // valid entries already present or repeated in the document
	Added      int // entries appended to the store
}

// Merger is the part of the quote store an import writes into.
type Merger interface {
	Merge(ctx context.Context, quotes []quote.Quote) (added, duplicates int, err error)
}

type exportRecord struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Export writes quotes as a pretty-printed JSON array of {text, category}.
func Export(w io.Writer, quotes []quote.Quote) error {
	records := make([]exportRecord, 0, len(quotes))
	for _, q := range quotes {
		records = append(records, exportRecord{Text: q.Text, Category: q.Category})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ExportFilename returns the download name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "quotes_export_" + now.Format(time.DateOnly) + ".json"
}

// WriteExport writes an export file into dir and returns its path.
func WriteExport(dir string, quotes []quote.Quote, now time.Time) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, quotes); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportFilename(now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// Decode parses an import document. It returns a *ParseError when the input
// is not a JSON array. Invalid entries are skipped and described by a
// *quote.ValidationError returned alongside the surviving quotes. When no
// entry survives the error is ErrEmptyImport (joined with the validation
// error if entries were skipped).
func Decode(r io.Reader) ([]quote.Quote, Report, error) {
	var report Report

	var entries []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, report, &ParseError{Err: err}
	}
	if entries == nil {
		return nil, report, &ParseError{Err: errors.New("root is not an array")}
	}
	report.Total = len(entries)

	var (
		out    []quote.Quote
		issues []quote.Issue
	)
	for i, raw := range entries {
		q, issue, ok := decodeEntry(i, raw)
		if !ok {
			issues = append(issues, issue)
			continue
		}
		out = append(out, q)
	}
	report.Valid = len(out)
	report.Skipped = len(issues)

	var err error
	if len(issues) > 0 {
		err = &quote.ValidationError{Issues: issues}
	}
	if len(out) == 0 {
		return nil, report, errors.Join(ErrEmptyImport, err)
	}
	return out, report, err
}

func decodeEntry(index int, raw json.RawMessage) (quote.Quote, quote.Issue, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return quote.Quote{}, quote.Issue{Index: index, Field: "entry", Reason: "is not an object"}, false
	}
	text, reason := stringField(fields, "text")
	if reason != "" {
		return quote.Quote{}, quote.Issue{Index: index, Field: "text", Reason: reason}, false
	}
	category, reason := stringField(fields, "category")
	if reason != "" {
		return quote.Quote{}, quote.Issue{Index: index, Field: "category", Reason: reason}, false
	}
	q, err := quote.New(text, category)
	if err != nil {
		return quote.Quote{}, quote.Issue{Index: index, Field: "entry", Reason: "is invalid"}, false
	}
	q.Source = quote.SourceLocal
	return q, quote.Issue{}, true
}

func stringField(fields map[string]any, name string) (string, string) {
	v, ok := fields[name]
	if !ok || v == nil {
		return "", "is missing"
	}
	s, ok := v.(string)
	if !ok {
		return "", "is not a string"
	}
	if strings.TrimSpace(s) == "" {
		return "", "is empty"
	}
	return s, ""
}

// Import decodes r and merges the surviving quotes into target. Partial
// imports return the report together with the *quote.ValidationError that
// lists skipped entries.
func Import(ctx context.Context, r io.Reader, target Merger) (Report, error) {
	quotes, report, err := Decode(r)
	if len(quotes) == 0 {
		return report, err
	}
	added, dups, mergeErr := target.Merge(ctx, quotes)
	report.Added = added
	report.Duplicates = dups
	return report, errors.Join(err, mergeErr)
}

// ImportFile opens path and imports it into target.
func ImportFile(ctx context.Context, path string, target Merger) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open import: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Import(ctx, f, target)
}
