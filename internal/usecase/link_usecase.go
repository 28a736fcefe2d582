// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"campus/internal/domain/entity"
)

// LinkUsecase is the link dispatcher. It normalizes inbound URLs
// (custom-scheme or https) into a canonical path + params pair and maps
// recognized paths to navigation actions. It holds no state and is
// independent of login state.
type LinkUsecase interface {
	// Normalize strips scheme and host and decodes query parameters. It is
	// idempotent: normalizing an already-bare path yields the same path.
	Normalize(raw string) (entity.NormalizedLink, error)

	// Dispatch maps a normalized link to its navigation action, first match
	// wins. Unrecognized links are a no-op.
	Dispatch(ctx context.Context, link entity.NormalizedLink)

	// HandleURL funnels one inbound URL through Normalize and Dispatch. Both
	// the cold-start URL and live URL events go through here.
	HandleURL(ctx context.Context, raw string)
}
