package library

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type BookInput struct {
	Name         string  `json:"name" validate:"required"`
	CategoryID   string  `json:"category_id" validate:"required,uuid"`
	CollectionID string  `json:"collection_id" validate:"required,uuid"`
	Publisher    *string `json:"publisher"`
	LaunchDate   *Date   `json:"launch_date"`
}

type CategoryInput struct {
	Name    string  `json:"name" validate:"required"`
	SubName *string `json:"sub_name"`
}

type CollectionInput struct {
	Name string `json:"name" validate:"required"`
}

type MemberInput struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone"`
}

type IssuanceInput struct {
	BookID     string  `json:"book_id" validate:"required,uuid"`
	MemberID   string  `json:"member_id" validate:"required,uuid"`
	ReturnDate string  `json:"return_date" validate:"required"`
	IssuedBy   *string `json:"issued_by"`
}

type IssuanceUpdate struct {
	ReturnDate *string `json:"return_date"`
	Status     *string `json:"status"`
}

type MembershipInput struct {
	Status string `json:"status" validate:"required"`
}

// fieldMessages picks the client-facing details text for a failed tag.
type fieldMessages struct {
	required string
	byTag    map[string]string
}

func check(in any, msgs fieldMessages) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Details: err.Error()}
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Details: msgs.required}
		}
	}
	if msg, ok := msgs.byTag[verrs[0].Tag()]; ok {
		return &ValidationError{Details: msg}
	}
	return &ValidationError{Details: verrs[0].Error()}
}

func (in *BookInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.CollectionID = strings.TrimSpace(in.CollectionID)
	return check(in, fieldMessages{
		required: "Name, category, and collection are required",
		byTag:    map[string]string{"uuid": "Invalid category or collection id"},
	})
}

func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return check(in, fieldMessages{required: "Name is required"})
}

func (in *CollectionInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return check(in, fieldMessages{required: "Name is required"})
}

func (in *MemberInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return check(in, fieldMessages{
		required: "Name and email are required",
		byTag:    map[string]string{"email": "Invalid email format"},
	})
}

// Validate checks required fields and returns the parsed due date.
func (in *IssuanceInput) Validate() (time.Time, error) {
	in.BookID = strings.TrimSpace(in.BookID)
	in.MemberID = strings.TrimSpace(in.MemberID)
	err := check(in, fieldMessages{
		required: "Book ID, member ID, and return date are required",
		byTag:    map[string]string{"uuid": "Invalid book or member id"},
	})
	if err != nil {
		return time.Time{}, err
	}
	due, err := ParseDueDate(in.ReturnDate)
	if err != nil {
		return time.Time{}, Invalid("Invalid return date format")
	}
	return due, nil
}

// Validate converts the raw update into a patch. Only the two lifecycle
// states are accepted.
func (in IssuanceUpdate) Validate() (IssuancePatch, error) {
	var p IssuancePatch
	if in.ReturnDate == nil && in.Status == nil {
		return p, Invalid("Return date or status is required")
	}
	if in.ReturnDate != nil {
		due, err := ParseDueDate(*in.ReturnDate)
		if err != nil {
			return p, Invalid("Invalid return date format")
		}
		p.ReturnDate = &due
	}
	if in.Status != nil {
		s := IssuanceStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !s.Valid() {
			return p, Invalid("Status must be one of: pending, returned")
		}
		p.Status = &s
	}
	return p, nil
}

func (in MembershipInput) Validate() (MembershipStatus, error) {
	s := MembershipStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !s.Valid() {
		return "", Invalid("Status must be one of: active, inactive")
	}
	return s, nil
}
