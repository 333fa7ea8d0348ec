// Package tangofile reads and writes the plain-text word list exchange format:
//
//	ja_list:
//	犬
//	猫
//	en_list:
//	dog
//	cat
package tangofile

import (
	"fmt"
	"strings"

	"tango/internal/domain"
)

const (
	NativeMarker      = "ja_list:"
	TranslationMarker = "en_list:"

	// FileName is the suggested name for downloaded lists
	FileName = "tango_data.txt"
)

// Encode serializes both lists
func Encode(native, translations []string) string {
	var b strings.Builder
	b.WriteString(NativeMarker + "\n")
	for _, w := range native {
		b.WriteString(w + "\n")
	}
	b.WriteString(TranslationMarker + "\n")
	for _, w := range translations {
		b.WriteString(w + "\n")
	}
	return b.String()
}

// Decode locates both marker lines and slices the lists between them.
// Entries are trimmed and blank lines dropped. A missing marker yields a
// *domain.ParseError.
func Decode(text string) ([]string, []string, error) {
	nativeLines, translationLines, err := sections(text)
	if err != nil {
		return nil, nil, err
	}
	return compact(nativeLines), compact(translationLines), nil
}

// Unaligned names the pairs that Decode(Encode(native, translations)) would
// not give back: blank native words, and blank translations followed by a
// filled one. Each pair is named by its filled side.
func Unaligned(native, translations []string) []string {
	lastTranslation := -1
	for i, t := range translations {
		if strings.TrimSpace(t) != "" {
			lastTranslation = i
		}
	}

	var out []string
	for i, w := range native {
		var t string
		if i < len(translations) {
			t = strings.TrimSpace(translations[i])
		}
		switch {
		case strings.TrimSpace(w) == "":
			if t != "" {
				out = append(out, t)
			}
		case t == "" && i < lastTranslation:
			out = append(out, w)
		}
	}
	return out
}

// CheckAligned returns domain.ErrUnaligned when either section has a blank
// line between entries. Files without markers are left to Decode.
func CheckAligned(text string) error {
	nativeLines, translationLines, err := sections(text)
	if err != nil {
		return nil
	}
	if hasGap(nativeLines) {
		return fmt.Errorf("%w in %s section", domain.ErrUnaligned, NativeMarker)
	}
	if hasGap(translationLines) {
		return fmt.Errorf("%w in %s section", domain.ErrUnaligned, TranslationMarker)
	}
	return nil
}

// sections returns the raw lines under each marker
func sections(text string) ([]string, []string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	nativeAt := indexOf(lines, NativeMarker)
	if nativeAt < 0 {
		return nil, nil, &domain.ParseError{Marker: NativeMarker}
	}
	translationAt := indexOf(lines, TranslationMarker)
	if translationAt < 0 {
		return nil, nil, &domain.ParseError{Marker: TranslationMarker}
	}

	var nativeLines []string
	if nativeAt < translationAt {
		nativeLines = lines[nativeAt+1 : translationAt]
	}
	return nativeLines, lines[translationAt+1:], nil
}

// hasGap reports a blank line followed by a non-blank one
func hasGap(lines []string) bool {
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank = true
		} else if blank {
			return true
		}
	}
	return false
}

// indexOf returns the first line equal to marker
func indexOf(lines []string, marker string) int {
	for i, line := range lines {
		if line == marker {
			return i
		}
	}
	return -1
}

func compact(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if w := strings.TrimSpace(line); w != "" {
			out = append(out, w)
		}
	}
	return out
}
