package library

import (
	"encoding/json"
	"time"
)

const (
	EventIssuanceCreated  = "IssuanceCreated"
	EventIssuanceReturned = "IssuanceReturned"
	EventIssuanceUpdated  = "IssuanceUpdated"

	TopicIssuanceEvents = "library.issuance.events"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // issuance id
	Payload       json.RawMessage `json:"payload"`
}

type IssuancePayload struct {
	IssuanceID string         `json:"issuance_id"`
	BookID     string         `json:"book_id"`
	MemberID   string         `json:"member_id"`
	IssuedBy   *string        `json:"issued_by,omitempty"`
	IssueDate  time.Time      `json:"issue_date"`
	ReturnDate time.Time      `json:"return_date"`
	Status     IssuanceStatus `json:"status"`
}

func PayloadFor(iss Issuance) IssuancePayload {
	return IssuancePayload{
		IssuanceID: iss.ID,
		BookID:     iss.BookID,
		MemberID:   iss.MemberID,
		IssuedBy:   iss.IssuedBy,
		IssueDate:  iss.IssueDate,
		ReturnDate: iss.ReturnDate,
		Status:     iss.Status,
	}
}

// PartitionKey keeps every event of one issuance on the same partition.
func PartitionKey(issuanceID string) []byte { return []byte(issuanceID) }
