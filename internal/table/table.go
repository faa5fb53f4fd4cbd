package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrUnsupported    = errors.New("unsupported table format")
)

// LoadOptions controls how a file becomes a Table.
type LoadOptions struct {
	// Delimiter for CSV. If 0, '\t' is used for .tsv files and ',' otherwise.
	Delimiter rune
	// Sheet selects the XLSX worksheet by name; empty means the first sheet.
	Sheet string
	// StringColumns are loaded as text regardless of their content, so that
	// categorical keys such as "01" keep their spelling.
	StringColumns []string
}

// Table is an in-memory, column-oriented dataset with named, typed columns.
type Table struct {
	name string
	df   dataframe.DataFrame
}

// New wraps an existing data frame.
func New(name string, df dataframe.DataFrame) *Table {
	return &Table{name: name, df: df}
}

// Load reads a CSV, TSV or XLSX file into a Table.
func Load(path string, opt LoadOptions) (*Table, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return loadXLSX(path, opt)
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".tsv"), strings.HasSuffix(lower, ".txt"):
		return loadCSV(path, opt)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
}

func loadCSV(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	df := dataframe.ReadCSV(f, append(loadOptions(opt), dataframe.WithDelimiter(delim))...)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv %s: %w", filepath.Base(path), df.Err)
	}
	return New(filepath.Base(path), df), nil
}

func loadOptions(opt LoadOptions) []dataframe.LoadOption {
	if len(opt.StringColumns) == 0 {
		return nil
	}
	types := make(map[string]series.Type, len(opt.StringColumns))
	for _, c := range opt.StringColumns {
		types[c] = series.String
	}
	return []dataframe.LoadOption{dataframe.WithTypes(types)}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Name is the base name of the source file, or the group label for split tables.
func (t *Table) Name() string { return t.name }

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.df.Nrow() }

// Names returns column names in file order.
func (t *Table) Names() []string { return t.df.Names() }

// Frame exposes the underlying data frame.
func (t *Table) Frame() dataframe.DataFrame { return t.df }

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Numbers returns a numeric column as float64 values; missing cells are NaN.
func (t *Table) Numbers(column string) ([]float64, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%s: %q: %w", t.name, column, ErrColumnNotFound)
	}
	s := t.df.Col(column)
	if s.Err != nil {
		return nil, fmt.Errorf("%s: %q: %w", t.name, column, s.Err)
	}
	switch s.Type() {
	case series.Float, series.Int:
		return s.Float(), nil
	default:
		return nil, fmt.Errorf("%s: %q is %s: %w", t.name, column, s.Type(), ErrNotNumeric)
	}
}

// Strings returns any column as text.
func (t *Table) Strings(column string) ([]string, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%s: %q: %w", t.name, column, ErrColumnNotFound)
	}
	s := t.df.Col(column)
	if s.Err != nil {
		return nil, fmt.Errorf("%s: %q: %w", t.name, column, s.Err)
	}
	return s.Records(), nil
}
