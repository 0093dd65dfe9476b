package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrUnknownColumn     = errors.New("unknown column")
	ErrEmptySource       = errors.New("source has no header row")
	ErrUnsupportedSource = errors.New("unsupported source type")
	ErrSourceTooLarge    = errors.New("source too large")
)

// maxSourceBytes caps how much of a remote source is read.
var maxSourceBytes int64 = 64 << 20

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Table is a rectangular view of a tabular source: one header row and the
// data rows below it. Rows shorter than the header read as empty cells.
type Table struct {
	Name    string
	headers []string
	rows    [][]string
}

// Columns returns the header names in source order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.headers...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Values returns the non-blank cells of the named column in row order, as raw
// strings. Empty and whitespace-only cells are skipped. An exact header match
// wins over a case-insensitive one.
func (t *Table) Values(name string) ([]string, error) {
	idx := t.column(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	values := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			continue
		}
		values = append(values, row[idx])
	}
	return values, nil
}

func (t *Table) column(name string) int {
	for i, h := range t.headers {
		if h == name {
			return i
		}
	}
	want := strings.TrimSpace(name)
	for i, h := range t.headers {
		if strings.EqualFold(h, want) {
			return i
		}
	}
	return -1
}

// Load reads a local file or an http(s) URL. The format follows the
// extension: .xlsx/.xlsm spreadsheets (first sheet), .json arrays of objects,
// anything else is parsed as delimited text.
func Load(ctx context.Context, pathOrURL string) (*Table, error) {
	name := pathOrURL
	var data []byte
	var err error
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		data, err = fetch(ctx, pathOrURL)
		if u, perr := url.Parse(pathOrURL); perr == nil {
			name = u.Path
		}
	} else {
		data, err = os.ReadFile(pathOrURL)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pathOrURL, err)
	}

	t, err := Parse(bytes.NewReader(data), strings.ToLower(path.Ext(name)))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pathOrURL, err)
	}
	t.Name = pathOrURL
	return t, nil
}

// Parse reads a table from r. ext selects the format the same way Load does.
func Parse(r io.Reader, ext string) (*Table, error) {
	switch ext {
	case ".xlsx", ".xlsm":
		return parseSpreadsheet(r)
	case ".json":
		return parseJSON(r)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy %s workbooks", ErrUnsupportedSource, ext)
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return parseDelimited(data)
	}
}

func fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSourceBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, maxSourceBytes)
	}
	return data, nil
}

func parseDelimited(data []byte) (*Table, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited text: %w", err)
	}
	return newTable(records)
}

// decodeText strips a byte order mark and falls back to Windows-1252 when
// the content is not valid UTF-8.
func decodeText(data []byte) ([]byte, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	if utf8.Valid(text) {
		return text, nil
	}
	text, err = charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return text, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the
// first line, ignoring quoted sections. Comma wins ties.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	counts := map[rune]int{}
	quoted := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ',' || r == ';' || r == '\t'):
			counts[r]++
		}
	}

	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}

func parseSpreadsheet(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySource
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return newTable(rows)
}

// parseJSON accepts an array of flat objects. Columns are the union of keys
// in sorted order; nested values are kept as their JSON text.
func parseJSON(r io.Reader) (*Table, error) {
	var items []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	seen := map[string]bool{}
	var headers []string
	for _, item := range items {
		for k := range item {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	if len(headers) == 0 {
		return nil, ErrEmptySource
	}
	sort.Strings(headers)

	rows := make([][]string, len(items))
	for i, item := range items {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = jsonCell(item[h])
		}
		rows[i] = row
	}
	return &Table{headers: headers, rows: rows}, nil
}

func jsonCell(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptySource
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	return &Table{headers: headers, rows: records[1:]}, nil
}
