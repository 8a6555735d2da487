package ports

import (
	"context"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// AuthRepository persists the accounts used to authenticate against the
// freight API: back-office staff and client users alike.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
