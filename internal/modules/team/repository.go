package team

import "context"

// Repository defines membership roster storage.
type Repository interface {
	// Upsert writes the membership document keyed by uid and, when the
	// member has an email, an email-keyed mirror document used by invite
	// lookup before the invitee's first sign-in.
	Upsert(ctx context.Context, m Membership) error
	GetByUID(ctx context.Context, uid string) (Membership, bool, error)
	ListByUser(ctx context.Context, uid string) ([]Membership, error)
	ListByStore(ctx context.Context, storeID string) ([]Membership, error)
}
