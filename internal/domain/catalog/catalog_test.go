package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

func TestServiceInput_Normalize(t *testing.T) {
	s, err := ServiceInput{
		PractitionerID: 1,
		Name:           " Consultation ",
		Price:          decimal.RequireFromString("5000.005"),
	}.Normalize()

	require.NoError(t, err)
	assert.Equal(t, "Consultation", s.Name)
	assert.Equal(t, 30, s.DurationMinutes)
	assert.True(t, s.Active)
	assert.Equal(t, "5000.01", s.Price.StringFixed(2))

	_, err = ServiceInput{PractitionerID: 1, Name: "X", Price: decimal.NewFromInt(-1)}.Normalize()
	assert.True(t, httperr.IsBusiness(err, "invalid_price"))

	_, err = ServiceInput{Name: "X"}.Normalize()
	assert.True(t, httperr.IsBusiness(err, "practitioner_required"))
}

func TestPractitionerInput_Normalize(t *testing.T) {
	p, err := PractitionerInput{
		FirstName:      "John",
		LastName:       "Smith",
		Specialization: "therapist",
		Phone:          "87011112233",
	}.Normalize()

	require.NoError(t, err)
	assert.Equal(t, "John Smith", p.FullName())
	assert.Equal(t, "+77011112233", p.Phone)

	_, err = PractitionerInput{FirstName: "John", LastName: "Smith"}.Normalize()
	assert.True(t, httperr.IsBusiness(err, "invalid_specialization"))
}
