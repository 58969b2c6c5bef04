package traveller

import (
	"context"

	"github.com/google/uuid"
)

// TravellerRepository defines the persistence contract for traveller profiles.
type TravellerRepository interface {
	// FindByUserID retrieves a traveller profile by the owning user's ID.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Traveller, error)

	// Save persists a new traveller profile.
	Save(ctx context.Context, t *Traveller) error

	// Update persists changes to an existing profile with optimistic locking.
	Update(ctx context.Context, t *Traveller) error
}
