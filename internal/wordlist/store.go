// Package wordlist holds the native word list and its aligned translations.
package wordlist

import (
	"strings"

	"tango/internal/domain"
)

// Store owns the native words and their translations. The two slices are
// aligned by index but may differ in length; a missing translation reads as "".
type Store struct {
	nativeWords  []string
	translations []string
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// AddWords appends every non-blank line of rawText and returns how many were added
func (s *Store) AddWords(rawText string) int {
	added := 0
	for _, line := range strings.Split(rawText, "\n") {
		word := strings.TrimSpace(line)
		if word == "" {
			continue
		}
		s.nativeWords = append(s.nativeWords, word)
		added++
	}
	return added
}

// Clear empties both lists
func (s *Store) Clear() {
	s.nativeWords = nil
	s.translations = nil
}

// ReplaceAll overwrites both lists
func (s *Store) ReplaceAll(nativeWords, translations []string) {
	s.nativeWords = clone(nativeWords)
	s.translations = clone(translations)
}

// SetTranslations overwrites the translations only
func (s *Store) SetTranslations(translations []string) {
	s.translations = clone(translations)
}

// PairedView zips native words with translations, padding missing ones with ""
func (s *Store) PairedView() []domain.Pair {
	pairs := make([]domain.Pair, len(s.nativeWords))
	for i, native := range s.nativeWords {
		pairs[i] = domain.Pair{Native: native, Translation: s.translationAt(i)}
	}
	return pairs
}

// NativeWords returns a copy of the native list
func (s *Store) NativeWords() []string {
	return clone(s.nativeWords)
}

// Translations returns a copy of the translation list
func (s *Store) Translations() []string {
	return clone(s.translations)
}

// Len returns the number of native words
func (s *Store) Len() int {
	return len(s.nativeWords)
}

func (s *Store) translationAt(i int) string {
	if i < len(s.translations) {
		return s.translations[i]
	}
	return ""
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
