package library

import "time"

type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SubName   *string   `json:"sub_name" db:"sub_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Collection struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Book struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CategoryID   string    `json:"category_id" db:"category_id"`
	CollectionID string    `json:"collection_id" db:"collection_id"`
	Publisher    *string   `json:"publisher" db:"publisher"`
	LaunchDate   *Date     `json:"launch_date" db:"launch_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Member struct {
	ID         string      `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	Email      string      `json:"email" db:"email"`
	Phone      *string     `json:"phone" db:"phone"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	Membership *Membership `json:"membership,omitempty" db:"-"`
}

type Membership struct {
	ID        string           `json:"id" db:"id"`
	MemberID  string           `json:"member_id" db:"member_id"`
	Status    MembershipStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Issuance is one loan of a book to a member. Overdue is derived at read
// time and never persisted.
type Issuance struct {
	ID         string         `json:"id"`
	BookID     string         `json:"book_id"`
	MemberID   string         `json:"member_id"`
	IssuedBy   *string        `json:"issued_by"`
	IssueDate  time.Time      `json:"issue_date"`
	ReturnDate time.Time      `json:"return_date"`
	Status     IssuanceStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	Overdue    bool           `json:"overdue"`
	Book       *BookSummary   `json:"book,omitempty"`
	Member     *MemberSummary `json:"member,omitempty"`
}

type BookSummary struct {
	Name      string  `json:"name"`
	Publisher *string `json:"publisher"`
}

type MemberSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BorrowCount is one row of the most-borrowed ranking.
type BorrowCount struct {
	BookID      string  `json:"book_id" db:"book_id"`
	Name        string  `json:"name" db:"name"`
	Publisher   *string `json:"publisher" db:"publisher"`
	BorrowCount int     `json:"borrow_count" db:"borrow_count"`
}

// Stats is the dashboard aggregate. OutstandingBooks holds the overdue
// issuances, PendingReturns the ones not yet due.
type Stats struct {
	TotalBooks       int        `json:"totalBooks"`
	TotalMembers     int        `json:"totalMembers"`
	ActiveIssuances  int        `json:"activeIssuances"`
	OutstandingBooks []Issuance `json:"outstandingBooks"`
	PendingReturns   []Issuance `json:"pendingReturns"`
}

// IssuanceQuery filters issuance listings. Zero values mean "any".
type IssuanceQuery struct {
	Status    IssuanceStatus
	BookID    string
	MemberID  string
	DueBefore *time.Time // return_date < DueBefore
	DueFrom   *time.Time // return_date >= DueFrom
}

// IssuancePatch carries the mutable fields of an issuance.
type IssuancePatch struct {
	ReturnDate *time.Time
	Status     *IssuanceStatus
}

type AuditEntry struct {
	ID         string    `json:"id" db:"id"`
	EventID    string    `json:"event_id" db:"event_id"`
	EventType  string    `json:"event_type" db:"event_type"`
	IssuanceID string    `json:"issuance_id" db:"issuance_id"`
	Payload    string    `json:"payload" db:"payload"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
