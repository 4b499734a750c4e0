package sqlstore

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/ariefcatur/booknest/internal/library"
)

const (
	msgEmailTaken  = "Email already registered"
	msgMemberInUse = "Member has issuances and cannot be deleted"
)

// memberRow is a member joined with its optional membership.
type memberRow struct {
	library.Member
	MembershipID        *string    `db:"ms_id"`
	MembershipStatus    *string    `db:"ms_status"`
	MembershipCreatedAt *time.Time `db:"ms_created_at"`
}

func (r memberRow) toMember() library.Member {
	m := r.Member
	if r.MembershipID != nil && r.MembershipStatus != nil {
		ms := &library.Membership{
			ID:       *r.MembershipID,
			MemberID: m.ID,
			Status:   library.MembershipStatus(*r.MembershipStatus),
		}
		if r.MembershipCreatedAt != nil {
			ms.CreatedAt = *r.MembershipCreatedAt
		}
		m.Membership = ms
	}
	return m
}

func (s *Store) memberSelect() *goqu.SelectDataset {
	return s.from(goqu.T(tableMember).As("m")).
		LeftJoin(goqu.T(tableMembership).As("ms"), goqu.On(goqu.I("ms.member_id").Eq(goqu.I("m.id")))).
		Select(
			goqu.I("m.id").As("id"),
			goqu.I("m.name").As("name"),
			goqu.I("m.email").As("email"),
			goqu.I("m.phone").As("phone"),
			goqu.I("m.created_at").As("created_at"),
			goqu.I("ms.id").As("ms_id"),
			goqu.I("ms.status").As("ms_status"),
			goqu.I("ms.created_at").As("ms_created_at"),
		)
}

func (s *Store) ListMembers(ctx context.Context) ([]library.Member, error) {
	var rows []memberRow
	if err := s.selectAll(ctx, &rows, s.memberSelect().Order(goqu.I("m.name").Asc(), goqu.I("m.id").Asc())); err != nil {
		return nil, fail("list members", err)
	}
	out := make([]library.Member, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toMember())
	}
	return out, nil
}

func (s *Store) GetMember(ctx context.Context, id string) (library.Member, error) {
	var r memberRow
	if err := s.getOne(ctx, &r, s.memberSelect().Where(goqu.I("m.id").Eq(id))); err != nil {
		return library.Member{}, readErr("Member", "get member", err)
	}
	return r.toMember(), nil
}

func (s *Store) CreateMember(ctx context.Context, m library.Member, ms library.Membership) (library.Member, error) {
	var out library.Member
	err := s.inTx(ctx, nil, func(tx *Store) error {
		_, err := tx.exec(ctx, tx.insert(tableMember).Rows(goqu.Record{
			"id":         m.ID,
			"name":       m.Name,
			"email":      m.Email,
			"phone":      nullString(m.Phone),
			"created_at": m.CreatedAt,
		}))
		if err != nil {
			return writeErr("create member", err, msgEmailTaken, "")
		}
		_, err = tx.exec(ctx, tx.insert(tableMembership).Rows(goqu.Record{
			"id":         ms.ID,
			"member_id":  m.ID,
			"status":     string(ms.Status),
			"created_at": ms.CreatedAt,
		}))
		if err != nil {
			return fail("create membership", err)
		}
		out, err = tx.GetMember(ctx, m.ID)
		return err
	})
	if err != nil {
		return library.Member{}, err
	}
	return out, nil
}

func (s *Store) UpdateMember(ctx context.Context, m library.Member) (library.Member, error) {
	n, err := s.exec(ctx, s.update(tableMember).Set(goqu.Record{
		"name":  m.Name,
		"email": m.Email,
		"phone": nullString(m.Phone),
	}).Where(goqu.C("id").Eq(m.ID)))
	if err != nil {
		return library.Member{}, writeErr("update member", err, msgEmailTaken, "")
	}
	if n == 0 {
		return library.Member{}, &library.NotFoundError{Entity: "Member"}
	}
	return s.GetMember(ctx, m.ID)
}

// DeleteMember removes the member and, by cascade, its membership. Members
// with issuances are kept.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	return s.inTx(ctx, nil, func(tx *Store) error {
		refs, err := tx.count(ctx, tx.from(tableIssuance).Where(goqu.C("member_id").Eq(id)))
		if err != nil {
			return fail("count member issuances", err)
		}
		if refs > 0 {
			return &library.ConflictError{Details: msgMemberInUse}
		}
		n, err := tx.exec(ctx, tx.delete(tableMember).Where(goqu.C("id").Eq(id)))
		if err != nil {
			return deleteErr("delete member", err, msgMemberInUse)
		}
		if n == 0 {
			return &library.NotFoundError{Entity: "Member"}
		}
		return nil
	})
}

// SetMembershipStatus updates the member's membership, creating one when
// the member has none yet.
func (s *Store) SetMembershipStatus(ctx context.Context, memberID string, status library.MembershipStatus) (library.Membership, error) {
	var out library.Membership
	err := s.inTx(ctx, nil, func(tx *Store) error {
		n, err := tx.exec(ctx, tx.update(tableMembership).
			Set(goqu.Record{"status": string(status)}).
			Where(goqu.C("member_id").Eq(memberID)))
		if err != nil {
			return fail("update membership", err)
		}
		if n == 0 {
			if _, err := tx.GetMember(ctx, memberID); err != nil {
				return err
			}
			_, err = tx.exec(ctx, tx.insert(tableMembership).Rows(goqu.Record{
				"id":         uuid.NewString(),
				"member_id":  memberID,
				"status":     string(status),
				"created_at": time.Now().UTC().Truncate(time.Microsecond),
			}))
			if err != nil {
				return fail("create membership", err)
			}
		}
		err = tx.getOne(ctx, &out, tx.from(tableMembership).
			Select("id", "member_id", "status", "created_at").
			Where(goqu.C("member_id").Eq(memberID)))
		if err != nil {
			return readErr("Membership", "get membership", err)
		}
		return nil
	})
	if err != nil {
		return library.Membership{}, err
	}
	return out, nil
}
