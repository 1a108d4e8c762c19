// Package slugs derives URL identifiers from titles and names.
package slugs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxAttempts = 5

// ExistsFunc reports whether a slug is already taken
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make returns the slug for s. Text with no sluggable characters yields a random slug.
func Make(s string) string {
	if out := slug.Make(s); out != "" {
		return out
	}
	return shortID()
}

// Unique derives a slug from s that exists reports as free.
// Collisions get a short random suffix.
func Unique(ctx context.Context, s string, exists ExistsFunc) (string, error) {
	base := Make(s)
	candidate := base
	for i := 0; i < maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + shortID()
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}

func shortID() string {
	return uuid.New().String()[:8]
}
