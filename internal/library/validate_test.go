package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	someUUID  = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"
	otherUUID = "6ec0bd7f-11c0-43da-975e-2a8ad9ebae0b"
)

func details(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	return verr.Details
}

func ptr[T any](v T) *T { return &v }

func TestMemberInputValidate(t *testing.T) {
	in := MemberInput{Name: "Alice"}
	assert.Equal(t, "Name and email are required", details(t, in.Validate()))

	in = MemberInput{Name: "  ", Email: "a@x.com"}
	assert.Equal(t, "Name and email are required", details(t, in.Validate()))

	in = MemberInput{Name: "Alice", Email: "not-an-email"}
	assert.Equal(t, "Invalid email format", details(t, in.Validate()))

	in = MemberInput{Name: " Alice ", Email: " a@x.com "}
	require.NoError(t, in.Validate())
	assert.Equal(t, "Alice", in.Name)
	assert.Equal(t, "a@x.com", in.Email)
}

func TestBookInputValidate(t *testing.T) {
	in := BookInput{Name: "Dune", CategoryID: someUUID}
	assert.Equal(t, "Name, category, and collection are required", details(t, in.Validate()))

	in = BookInput{Name: "Dune", CategoryID: someUUID, CollectionID: "nope"}
	assert.Equal(t, "Invalid category or collection id", details(t, in.Validate()))

	in = BookInput{Name: "Dune", CategoryID: someUUID, CollectionID: otherUUID}
	assert.NoError(t, in.Validate())
}

func TestCategoryAndCollectionValidate(t *testing.T) {
	assert.Equal(t, "Name is required", details(t, (&CategoryInput{}).Validate()))
	assert.Equal(t, "Name is required", details(t, (&CollectionInput{Name: " "}).Validate()))
	assert.NoError(t, (&CategoryInput{Name: "Sci-fi", SubName: ptr("Space opera")}).Validate())
}

func TestIssuanceInputValidate(t *testing.T) {
	in := IssuanceInput{BookID: someUUID, MemberID: otherUUID}
	_, err := in.Validate()
	assert.Equal(t, "Book ID, member ID, and return date are required", details(t, err))

	in = IssuanceInput{BookID: "x", MemberID: otherUUID, ReturnDate: "2024-06-01"}
	_, err = in.Validate()
	assert.Equal(t, "Invalid book or member id", details(t, err))

	in = IssuanceInput{BookID: someUUID, MemberID: otherUUID, ReturnDate: "soon"}
	_, err = in.Validate()
	assert.Equal(t, "Invalid return date format", details(t, err))

	in = IssuanceInput{BookID: someUUID, MemberID: otherUUID, ReturnDate: "2024-06-01"}
	due, err := in.Validate()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", due.Format("2006-01-02"))
}

func TestIssuanceUpdateValidate(t *testing.T) {
	_, err := IssuanceUpdate{}.Validate()
	assert.Equal(t, "Return date or status is required", details(t, err))

	_, err = IssuanceUpdate{Status: ptr("overdue")}.Validate()
	assert.Equal(t, "Status must be one of: pending, returned", details(t, err))

	_, err = IssuanceUpdate{ReturnDate: ptr("tomorrow")}.Validate()
	assert.Equal(t, "Invalid return date format", details(t, err))

	p, err := IssuanceUpdate{Status: ptr(" Returned "), ReturnDate: ptr("2024-07-01")}.Validate()
	require.NoError(t, err)
	require.NotNil(t, p.Status)
	assert.Equal(t, StatusReturned, *p.Status)
	require.NotNil(t, p.ReturnDate)
	assert.Equal(t, "2024-07-01", p.ReturnDate.Format("2006-01-02"))
}

func TestMembershipInputValidate(t *testing.T) {
	_, err := MembershipInput{Status: "gold"}.Validate()
	assert.Equal(t, "Status must be one of: active, inactive", details(t, err))

	s, err := MembershipInput{Status: "INACTIVE"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, MembershipInactive, s)
}
