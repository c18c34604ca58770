package usecase

import "context"

//go:generate mockgen -source=directory.go -destination=mocks/mock_directory.go -package=mocks

// UserDirectory is the external identity collaborator. Settlement only
// ever checks existence; it never creates or modifies users.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}
