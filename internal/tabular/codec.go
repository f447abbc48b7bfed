package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/permute/internal/prompt"
)

const (
	// DefaultFilename is the name exported files are saved under.
	DefaultFilename = "prompts.csv"

	// ContentType is the media type of encoded output.
	ContentType = "text/csv"
)

// Layout selects how entries map onto the table.
type Layout int

const (
	// Rows puts one entry per line: name, then variants.
	Rows Layout = iota
	// Columns puts one entry per column: name in the header, variants below.
	Columns
)

// String returns the flag spelling of the layout.
func (l Layout) String() string {
	switch l {
	case Rows:
		return "rows"
	case Columns:
		return "columns"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses "rows" or "columns".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rows", "row":
		return Rows, nil
	case "columns", "column", "cols":
		return Columns, nil
	default:
		return 0, fmt.Errorf("unknown layout %q: must be rows or columns", s)
	}
}

// Encode writes the store one entry per line. Rows are ragged: each has
// as many fields as the entry has variants, plus the name.
func Encode(store *prompt.Store) string {
	return EncodeLayout(store, Rows)
}

// Decode reads text with one entry per header column.
// It never fails: ragged rows, blank cells and empty input are all valid.
func Decode(text string, gen prompt.IDGenerator) prompt.Store {
	return DecodeLayout(text, Columns, gen)
}

// EncodeLayout writes the store in the given layout.
func EncodeLayout(store *prompt.Store, layout Layout) string {
	entries := store.Entries()
	var b strings.Builder

	if layout == Columns {
		if len(entries) == 0 {
			return ""
		}
		depth := 0
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
			depth = max(depth, len(e.Variants))
		}
		writeLine(&b, names)
		row := make([]string, len(entries))
		for r := 0; r < depth; r++ {
			for i, e := range entries {
				row[i] = ""
				if r < len(e.Variants) {
					row[i] = e.Variants[r]
				}
			}
			writeLine(&b, row)
		}
		return b.String()
	}

	for _, e := range entries {
		fields := make([]string, 0, len(e.Variants)+1)
		fields = append(fields, e.Name)
		fields = append(fields, e.Variants...)
		writeLine(&b, fields)
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	b.WriteString(strings.Join(fields, ","))
	b.WriteByte('\n')
}

// DecodeLayout parses text in the given layout into a new store. Entry ids
// come from gen. Blank values never become variants.
func DecodeLayout(text string, layout Layout, gen prompt.IDGenerator) prompt.Store {
	rows := parseRows(text)
	if len(rows) == 0 {
		return prompt.Store{}
	}

	var entries []prompt.Entry
	if layout == Rows {
		for _, row := range rows {
			entries = append(entries, prompt.Entry{
				ID:       gen.Generate(),
				Name:     row[0],
				Variants: prompt.Usable(row[1:]),
			})
		}
		return prompt.NewStore(entries...)
	}

	header, body := rows[0], rows[1:]
	for col, name := range header {
		variants := []string{}
		for _, row := range body {
			if col >= len(row) || prompt.IsBlank(row[col]) {
				continue
			}
			variants = append(variants, row[col])
		}
		entries = append(entries, prompt.Entry{
			ID:       gen.Generate(),
			Name:     name,
			Variants: variants,
		})
	}
	return prompt.NewStore(entries...)
}

// parseRows splits text into cleaned fields per line. Leading lines that
// are empty are skipped so the header is the first line with content;
// empty lines after it are dropped since they contribute nothing.
func parseRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitFields(line))
	}
	return rows
}

// splitFields splits a line on commas that are outside double quotes, then
// strips quote characters and surrounding whitespace from each field.
func splitFields(line string) []string {
	var (
		fields  []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				fields = append(fields, clean(line[start:i]))
				start = i + 1
			}
		}
	}
	return append(fields, clean(line[start:]))
}

func clean(field string) string {
	return strings.TrimSpace(strings.ReplaceAll(field, `"`, ""))
}

// Write encodes store to w in the given layout.
func Write(w io.Writer, store *prompt.Store, layout Layout) error {
	if _, err := io.WriteString(w, EncodeLayout(store, layout)); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// Read decodes everything from r in the given layout.
func Read(r io.Reader, layout Layout, gen prompt.IDGenerator) (prompt.Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return prompt.Store{}, fmt.Errorf("read table: %w", err)
	}
	return DecodeLayout(string(data), layout, gen), nil
}
