package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoad_CSV(t *testing.T) {
	p := writeFile(t, "codes.csv", []byte("sku, \"name\"\nA-1,Widget\nB-2,\"Gadget, large\"\n,Blank\n"))

	table, err := Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, table.Name)
	assert.Equal(t, []string{"sku", "name"}, table.Columns())
	assert.Equal(t, 3, table.Len())

	values, err := table.Values("sku")
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "B-2"}, values)

	values, err = table.Values(" NAME ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget", "Gadget, large", "Blank"}, values)
}

func TestLoad_SemicolonWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("code;label\n123;a,b\n456;c\n")...)
	table, err := Load(context.Background(), writeFile(t, "codes.txt", data))
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "label"}, table.Columns())

	values, err := table.Values("code")
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "456"}, values)
}

func TestLoad_TabSeparated(t *testing.T) {
	table, err := Load(context.Background(), writeFile(t, "codes.tsv", []byte("a\tb\n1\t2\n")))
	require.NoError(t, err)
	values, err := table.Values("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, values)
}

func TestLoad_Windows1252(t *testing.T) {
	// "Café" with é as 0xE9
	table, err := Load(context.Background(), writeFile(t, "legacy.csv", []byte("name\nCaf\xe9\n")))
	require.NoError(t, err)
	values, err := table.Values("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Café"}, values)
}

func TestLoad_ShortRowsAndBlankHeaders(t *testing.T) {
	table, err := Load(context.Background(), writeFile(t, "ragged.csv", []byte("a,,c\n1\n1,2,3\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_2", "c"}, table.Columns())

	values, err := table.Values("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, values)
}

func TestLoad_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "url"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, "https://example.com/a"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{2, "https://example.com/b"}))
	p := filepath.Join(t.TempDir(), "codes.xlsx")
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	table, err := Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "url"}, table.Columns())

	values, err := table.Values("url")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, values)

	ids, err := table.Values("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestLoad_JSON(t *testing.T) {
	data := []byte(`[{"sku":"A","qty":3},{"sku":"B","note":null},{"qty":1.5}]`)
	table, err := Load(context.Background(), writeFile(t, "codes.json", data))
	require.NoError(t, err)
	assert.Equal(t, []string{"note", "qty", "sku"}, table.Columns())

	qty, err := table.Values("qty")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1.5"}, qty)

	sku, err := table.Values("sku")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sku)
}

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export/codes.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("code\nX1\nX2\n"))
	}))
	defer srv.Close()

	table, err := Load(context.Background(), srv.URL+"/export/codes.csv?token=abc")
	require.NoError(t, err)
	values, err := table.Values("code")
	require.NoError(t, err)
	assert.Equal(t, []string{"X1", "X2"}, values)

	_, err = Load(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestTable_ValuesSkipsBlankCells(t *testing.T) {
	table, err := Parse(strings.NewReader("code,name\nA,x\n,y\nB,z\n   ,w\n\t,v\n"), ".csv")
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	values, err := table.Values("code")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, values)

	// surrounding whitespace of real values is kept
	table, err = Parse(strings.NewReader("code\n A \n"), ".csv")
	require.NoError(t, err)
	values, err = table.Values("code")
	require.NoError(t, err)
	assert.Equal(t, []string{" A "}, values)
}

func TestLoad_HTTPTooLarge(t *testing.T) {
	prev := maxSourceBytes
	maxSourceBytes = 32
	t.Cleanup(func() { maxSourceBytes = prev })

	bodies := map[string]string{
		"/big.csv": "code\n" + strings.Repeat("VALUE\n", 10),
		"/fit.csv": "code\n" + strings.Repeat("V", 27),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bodies[r.URL.Path]))
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/big.csv")
	require.ErrorIs(t, err, ErrSourceTooLarge)

	// exactly at the limit is accepted
	table, err := Load(context.Background(), srv.URL+"/fit.csv")
	require.NoError(t, err)
	values, err := table.Values("code")
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("V", 27)}, values)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(context.Background(), writeFile(t, "empty.csv", nil))
	require.ErrorIs(t, err, ErrEmptySource)

	_, err = Load(context.Background(), writeFile(t, "old.xls", []byte("x")))
	require.ErrorIs(t, err, ErrUnsupportedSource)

	table, err := Load(context.Background(), writeFile(t, "one.csv", []byte("a\n1\n")))
	require.NoError(t, err)
	_, err = table.Values("b")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{"a,b,c", ','},
		{"a;b;c", ';'},
		{"a\tb", '\t'},
		{`"x;y;z",b`, ','},
		{"single", ','},
		{"a;b,c", ','},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sniffDelimiter([]byte(tt.line)), tt.line)
	}
}
