package ai

import (
	"context"
	"errors"
)

var (
	// ErrOracleUnavailable is returned when a generation call fails or times out.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrMalformedOutput is returned when the oracle produced no usable text.
	ErrMalformedOutput = errors.New("malformed oracle output")
)

// Oracle turns a prompt into a text completion.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, prompt string) (string, error)

func (f OracleFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
