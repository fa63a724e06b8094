// File path: internal/embedding/fallback.go
package embedding

import (
	"context"
	"math"
	"unicode/utf16"
)

// fallbackProvider produces deterministic pseudo-embeddings with no external
// dependency. The same text always yields the same unit vector, which keeps
// retrieval self-consistent when no embedding API is configured.
type fallbackProvider struct {
	dimensions int
}

func newFallbackProvider(dimensions int) *fallbackProvider {
	return &fallbackProvider{dimensions: dimensions}
}

// Embed hashes the UTF-16 code units of the text with a 32-bit rolling hash
// and expands the hash into a sine-derived vector, L2-normalized. Empty text
// (or any input whose raw vector has zero norm) yields the zero vector; the
// method never fails.
func (f *fallbackProvider) Embed(_ context.Context, text string) ([]float32, error) {
	hash := textHash(text)
	vector := make([]float32, f.dimensions)
	var norm float64
	for i := range vector {
		seed := float64(hash) + float64(i)*1234567
		value := (math.Sin(seed) + 1) / 2
		vector[i] = float32(value)
		norm += value * value
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vector, nil
	}
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector, nil
}

func (f *fallbackProvider) Name() string { return "deterministic" }

// textHash is the 32-bit rolling hash h = (h<<5) - h + code over UTF-16 code
// units, with wraparound.
func textHash(text string) int32 {
	var h int32
	for _, code := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(code)
	}
	return h
}
