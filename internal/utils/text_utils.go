package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/mikey/loan-predictor/internal/core"
)

// NormalizeValue trims a raw cell value and puts it in Unicode NFC form so
// that visually identical category labels compare equal.
func NormalizeValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	return norm.NFC.String(v)
}

// TextProcessor provides utilities for processing request text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// SanitizeUTF8 drops invalid UTF-8 sequences and normalizes the result
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
		tp.logger.Debug("Text sanitized", zap.Int("sanitized_size", len(text)))
	}
	return NormalizeValue(text)
}

// ProcessFields sanitizes every value of an incoming field set. A value that
// is still longer than maxSize bytes once sanitized is rejected with
// core.ErrInvalidInput rather than cut, so a malformed prefix can never turn
// a long value into a short one.
func (tp *TextProcessor) ProcessFields(fields map[string]string, maxSize int) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		name := strings.TrimSpace(k)
		clean := tp.SanitizeUTF8(v)
		if maxSize > 0 && len(clean) > maxSize {
			tp.logger.Debug("Field too long",
				zap.String("field", name),
				zap.Int("size", len(clean)),
				zap.Int("max_size", maxSize))
			return nil, core.Errorf(core.ErrInvalidInput, "text", "process fields",
				"field %q is %d bytes, limit is %d", name, len(clean), maxSize)
		}
		out[name] = clean
	}
	return out, nil
}
