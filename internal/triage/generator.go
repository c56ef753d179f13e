// Package triage classifies ticket urgency and drafts a reply through an
// external text-generation model. The model is treated as unreliable: every
// failure collapses into the default priority and an empty reply.
package triage

import (
	"context"
	"fmt"
)

// Generator performs one text-generation call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ProviderError is returned when the model endpoint answers with an error.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Static answers every prompt with the same text and error.
type Static struct {
	Text string
	Err  error
}

// Generate returns the fixed response.
func (s Static) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, s.Err
}
