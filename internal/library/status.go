package library

import "time"

type IssuanceStatus string

const (
	StatusPending  IssuanceStatus = "pending"
	StatusReturned IssuanceStatus = "returned"
)

// overdue is intentionally absent: it is derived from pending + return_date.
var validNext = map[IssuanceStatus]map[IssuanceStatus]bool{
	StatusPending:  {StatusReturned: true},
	StatusReturned: {},
}

func CanTransition(from, to IssuanceStatus) bool {
	return validNext[from][to]
}

func (s IssuanceStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// IsOverdue reports whether the issuance is still out and past its due date.
func (i Issuance) IsOverdue(now time.Time) bool {
	return i.Status == StatusPending && i.ReturnDate.Before(now)
}

type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

func (s MembershipStatus) Valid() bool {
	return s == MembershipActive || s == MembershipInactive
}
