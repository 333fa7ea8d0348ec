// Package translator holds the offline Translator backed by a glossary file.
// The Gemini-backed one lives in translator/gemini.
package translator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"tango/internal/tangofile"

	"go.uber.org/zap"
)

// Dictionary translates by exact lookup in a fixed glossary
type Dictionary struct {
	entries map[string]string
	logger  *zap.Logger
}

// NewDictionary creates a dictionary translator from native→translation entries
func NewDictionary(entries map[string]string, logger *zap.Logger) *Dictionary {
	normalized := make(map[string]string, len(entries))
	for k, v := range entries {
		normalized[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return &Dictionary{entries: normalized, logger: logger}
}

// LoadDictionary reads a glossary stored in the tango exchange format
func LoadDictionary(path string, logger *zap.Logger) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}

	native, translations, err := tangofile.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse glossary %s: %w", path, err)
	}

	entries := make(map[string]string, len(native))
	for i, word := range native {
		if i >= len(translations) {
			break
		}
		entries[word] = translations[i]
	}

	logger.Info("Glossary loaded",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)

	return NewDictionary(entries, logger), nil
}

// TranslateBatch looks up every word; unknown words translate to ""
func (d *Dictionary) TranslateBatch(ctx context.Context, words []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]string, len(words))
	missing := 0
	for i, w := range words {
		t, ok := d.entries[strings.TrimSpace(w)]
		if !ok {
			missing++
		}
		out[i] = t
	}

	if missing > 0 {
		d.logger.Debug("Glossary lookup incomplete",
			zap.Int("words", len(words)),
			zap.Int("missing", missing),
		)
	}

	return out, nil
}
