package ports

import (
	"context"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// AuthService registers accounts and exchanges credentials for the JWT
// used on every freight endpoint. Role is one of admin, operator or
// client; client accounts carry the client_id their shipments belong to.
type AuthService interface {
	Register(ctx context.Context, username, password, email, role, clientID string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
