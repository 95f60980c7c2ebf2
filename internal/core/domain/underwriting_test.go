package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsFor_EveryCoverageTypeHasFields(t *testing.T) {
	for _, ct := range AllCoverageTypes() {
		fields, err := FieldsFor(ct)
		require.NoError(t, err, "coverage type %s", ct)
		assert.NotEmpty(t, fields, "coverage type %s must have underwriting fields", ct)

		for _, f := range fields {
			assert.NotEmpty(t, f.Key)
			assert.NotEmpty(t, f.Label)
			if f.Kind == FieldChoice {
				assert.NotEmpty(t, f.Options, "choice field %s needs options", f.Key)
			}
			if f.Kind == FieldFile {
				assert.NotEmpty(t, f.AcceptedTypes, "file field %s needs accepted types", f.Key)
				assert.Positive(t, f.MaxSizeBytes, "file field %s needs a size limit", f.Key)
			}
		}
	}
}

func TestFieldsFor_UnknownType(t *testing.T) {
	_, err := FieldsFor(CoverageType("PET"))
	require.Error(t, err)

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "coverage_type", ve.Field)
}

func TestValidateSubmission_Valid(t *testing.T) {
	err := ValidateSubmission(CoverageProperty, map[string]string{
		"property_type":    "house",
		"property_address": "12 Harbour Road",
		"title_deed":       "42",
	})
	assert.NoError(t, err)
}

func TestValidateSubmission_MissingRequired(t *testing.T) {
	err := ValidateSubmission(CoverageVehicle, map[string]string{
		"vehicle_type": "car",
	})
	require.Error(t, err)

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "accident_history", ve.Field)
}

func TestValidateSubmission_ChoiceOutsideOptions(t *testing.T) {
	err := ValidateSubmission(CoverageVehicle, map[string]string{
		"vehicle_type":     "submarine",
		"accident_history": "7",
	})
	require.Error(t, err)

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "vehicle_type", ve.Field)
}

func TestValidateSubmission_RejectsUnknownKeys(t *testing.T) {
	err := ValidateSubmission(CoverageHealth, map[string]string{
		"medical_history": "1",
		"family_history":  "2",
		"favourite_color": "blue",
	})
	require.Error(t, err)

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "favourite_color", ve.Field)
}

func TestCoverageType_TermsAndDepartments(t *testing.T) {
	assert.Equal(t, 1, CoverageTravel.TermMonths())
	assert.Equal(t, 120, CoverageLife.TermMonths())
	assert.Equal(t, 12, CoverageVehicle.TermMonths())
	assert.Equal(t, "Motor", CoverageVehicle.Department())
	assert.False(t, CoverageType("PET").IsValid())
}

func TestOfferStatus_Transitions(t *testing.T) {
	assert.True(t, OfferPending.CanTransitionTo(OfferApproved))
	assert.True(t, OfferPending.CanTransitionTo(OfferRejected))
	assert.True(t, OfferPending.CanTransitionTo(OfferExpired))

	for _, terminal := range []OfferStatus{OfferApproved, OfferRejected, OfferExpired} {
		assert.False(t, terminal.CanTransitionTo(OfferPending), "%s is terminal", terminal)
		assert.False(t, terminal.CanTransitionTo(OfferApproved), "%s is terminal", terminal)
	}
}
