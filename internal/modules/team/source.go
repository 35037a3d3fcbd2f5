package team

import (
	"context"

	"github.com/sedifex/sedifex-backend/internal/modules/activestore"
)

// MembershipSource feeds the active-store resolver from the roster.
type MembershipSource struct{ repo Repository }

func NewMembershipSource(repo Repository) *MembershipSource {
	return &MembershipSource{repo: repo}
}

func (s *MembershipSource) Memberships(ctx context.Context, uid string) ([]activestore.Membership, error) {
	memberships, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]activestore.Membership, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, activestore.Membership{StoreID: m.StoreID, Role: string(m.Role)})
	}
	return out, nil
}
