package linking

import "context"

type Repository interface {
	Create(ctx context.Context, token *AccountLinkingToken) error
	GetByToken(ctx context.Context, token string) (*AccountLinkingToken, error)

	// Update persists a redeemed token. Implementations must compare the
	// stored version against Version()-1 and fail with
	// ErrConcurrentModification when another writer got there first.
	Update(ctx context.Context, token *AccountLinkingToken) error
}
