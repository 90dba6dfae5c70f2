package csvimport

import (
	"strings"
)

// Row is one parsed employee line. A field is empty both when the cell was
// empty and when its column was absent from the header.
type Row struct {
	FullName string
	Phone    string
	Email    string
	Position string
}

// Result carries the parsed rows plus import diagnostics.
type Result struct {
	Rows []Row
	// Columns lists the recognized header columns that were found.
	Columns []string
	// Skipped counts data lines that produced no usable field at all.
	Skipped int
}

// Column vocabularies for the two import call sites. Onboarding imports the
// full set; the company-card import ignores phone numbers.
var (
	OnboardingColumns = []string{"fullname", "phone", "email", "position"}
	CompanyColumns    = []string{"fullname", "email", "position"}
)

// Parse parses employee CSV text against the given column vocabulary.
//
// The format is deliberately naive and matches the documented contract:
// lines split on CR/LF, blank lines dropped, a UTF-8 BOM stripped from the
// first line. The delimiter is detected per file: semicolon wins only when the
// header contains strictly more semicolons than commas. Header names are
// lowercased and matched exactly; a column missing from the header yields an
// empty field on every row. There is no quoting support, so a delimiter inside
// a value corrupts that row's alignment - a known limitation, not a bug.
func Parse(text string, columns []string) Result {
	lines := splitLines(text)
	if len(lines) == 0 {
		return Result{}
	}

	header := strings.TrimPrefix(lines[0], "\uFEFF")
	delimiter := detectDelimiter(header)

	fields := strings.Split(header, delimiter)
	index := make(map[string]int, len(columns))
	for _, col := range columns {
		index[col] = -1
	}
	for i, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f))
		if pos, ok := index[name]; ok && pos == -1 {
			index[name] = i
		}
	}

	var found []string
	for _, col := range columns {
		if index[col] >= 0 {
			found = append(found, col)
		}
	}

	result := Result{Columns: found}
	for _, line := range lines[1:] {
		cols := strings.Split(line, delimiter)
		row := Row{
			FullName: cell(cols, colIndex(index, "fullname")),
			Phone:    cell(cols, colIndex(index, "phone")),
			Email:    cell(cols, colIndex(index, "email")),
			Position: cell(cols, colIndex(index, "position")),
		}
		if row.FullName == "" && row.Phone == "" && row.Email == "" && row.Position == "" {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// detectDelimiter picks semicolon only when it is strictly more frequent than
// comma in the header line.
func detectDelimiter(header string) string {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ";"
	}
	return ","
}

// colIndex returns the header position of a column, or -1 when the column is
// not part of the vocabulary or was absent from the header.
func colIndex(index map[string]int, name string) int {
	if pos, ok := index[name]; ok {
		return pos
	}
	return -1
}

func cell(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}
