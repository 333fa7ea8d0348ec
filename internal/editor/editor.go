// Package editor converts an edit buffer of native/translation rows back
// into the aligned lists kept by the word list store.
package editor

import (
	"strings"

	"tango/internal/domain"
)

// Separator splits native word and translation in the text form of a row
const Separator = "="

// Reconcile trims every row and drops rows whose fields are both empty.
// Row order is preserved.
func Reconcile(rows []domain.EditableRow) ([]string, []string) {
	native := make([]string, 0, len(rows))
	translations := make([]string, 0, len(rows))

	for _, row := range rows {
		n := strings.TrimSpace(row.Native)
		t := strings.TrimSpace(row.Translation)
		if n == "" && t == "" {
			continue
		}
		native = append(native, n)
		translations = append(translations, t)
	}

	return native, translations
}

// Rows builds an edit buffer from the paired view of the word list
func Rows(pairs []domain.Pair) []domain.EditableRow {
	rows := make([]domain.EditableRow, len(pairs))
	for i, p := range pairs {
		rows[i] = domain.EditableRow{Native: p.Native, Translation: p.Translation}
	}
	return rows
}

// FormatTable renders rows one per line as "native = translation"
func FormatTable(rows []domain.EditableRow) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.Native)
		b.WriteString(" " + Separator + " ")
		b.WriteString(row.Translation)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseTable reads rows written by FormatTable. A line without separator
// is a row with only a native word. Blank lines become empty rows and are
// dropped later by Reconcile.
func ParseTable(text string) []domain.EditableRow {
	lines := strings.Split(text, "\n")
	rows := make([]domain.EditableRow, 0, len(lines))

	for _, line := range lines {
		native, translation, _ := strings.Cut(line, Separator)
		rows = append(rows, domain.EditableRow{
			Native:      native,
			Translation: translation,
		})
	}

	return rows
}
