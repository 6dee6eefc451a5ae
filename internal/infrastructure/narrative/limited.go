package narrative

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Limited admits at most rps calls per second (with burst) to the wrapped
// generator. Callers over the limit wait until a token is free or their
// context ends.
type Limited struct {
	next    Generator
	limiter *rate.Limiter
}

func NewLimited(next Generator, rps float64, burst int) *Limited {
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (l *Limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for model quota: %w", err)
	}
	return l.next.Generate(ctx, prompt)
}
