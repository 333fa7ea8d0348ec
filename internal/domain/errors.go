package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when an exchange file lacks a required marker line
	ErrParse = errors.New("parse error")
	// ErrTranslation wraps failures of the external translator
	ErrTranslation = errors.New("translation error")
	// ErrOutOfRange means quiz position and deck length diverged
	ErrOutOfRange = errors.New("quiz position out of range")
	// ErrNothingToTest is returned when a quiz is started without pairs
	ErrNothingToTest = errors.New("nothing to test")
	// ErrQuizInactive is returned when answering or advancing without a running quiz
	ErrQuizInactive = errors.New("no test in progress")
	// ErrUnaligned means an exchange file has a blank entry between filled ones,
	// so decoding it would pair words with the wrong translations
	ErrUnaligned = errors.New("blank entry between words")
)

// ParseError describes a malformed exchange file
type ParseError struct {
	Marker string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: missing marker line %q", ErrParse, e.Marker)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// TranslationError wraps the translator's error
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTranslation, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause
func (e *TranslationError) Unwrap() []error {
	return []error{ErrTranslation, e.Err}
}
