package library

import "context"

func (s *Service) ListMembers(ctx context.Context) ([]Member, error) {
	return s.store.ListMembers(ctx)
}

func (s *Service) GetMember(ctx context.Context, id string) (Member, error) {
	if err := checkID("Member", id); err != nil {
		return Member{}, err
	}
	return s.store.GetMember(ctx, id)
}

// CreateMember registers a member together with an active membership.
func (s *Service) CreateMember(ctx context.Context, in MemberInput) (Member, error) {
	if err := in.Validate(); err != nil {
		return Member{}, err
	}
	now := s.clock()
	m := Member{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
	}
	ms := Membership{
		ID:        s.newID(),
		MemberID:  m.ID,
		Status:    MembershipActive,
		CreatedAt: now,
	}
	return s.store.CreateMember(ctx, m, ms)
}

func (s *Service) UpdateMember(ctx context.Context, id string, in MemberInput) (Member, error) {
	if err := checkID("Member", id); err != nil {
		return Member{}, err
	}
	if err := in.Validate(); err != nil {
		return Member{}, err
	}
	return s.store.UpdateMember(ctx, Member{ID: id, Name: in.Name, Email: in.Email, Phone: in.Phone})
}

func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if err := checkID("Member", id); err != nil {
		return err
	}
	return s.store.DeleteMember(ctx, id)
}

func (s *Service) GetMembership(ctx context.Context, memberID string) (Membership, error) {
	m, err := s.GetMember(ctx, memberID)
	if err != nil {
		return Membership{}, err
	}
	if m.Membership == nil {
		return Membership{}, &NotFoundError{Entity: "Membership"}
	}
	return *m.Membership, nil
}

func (s *Service) SetMembership(ctx context.Context, memberID string, in MembershipInput) (Membership, error) {
	if err := checkID("Member", memberID); err != nil {
		return Membership{}, err
	}
	status, err := in.Validate()
	if err != nil {
		return Membership{}, err
	}
	return s.store.SetMembershipStatus(ctx, memberID, status)
}
