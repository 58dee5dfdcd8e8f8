// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type usernameFixture struct {
	Username string `validate:"required,username"`
}

type unitFixture struct {
	Unit string `validate:"required,quantity_unit"`
}

func TestUsernameValidator(t *testing.T) {
	valid := []string{"farmer_joe", "Distributor1", "abc"}
	for _, name := range valid {
		assert.NoError(t, ValidateStruct(&usernameFixture{Username: name}), name)
	}

	invalid := []string{"ab", "has space", "bad-dash", "emoji🌾"}
	for _, name := range invalid {
		assert.Error(t, ValidateStruct(&usernameFixture{Username: name}), name)
	}
}

func TestQuantityUnitValidator(t *testing.T) {
	valid := []string{"kg", "g", "ton", "crate", "box", "unit", "KG"}
	for _, unit := range valid {
		assert.NoError(t, ValidateStruct(&unitFixture{Unit: unit}), unit)
	}

	invalid := []string{"litre", "lbs", "pallet"}
	for _, unit := range invalid {
		assert.Error(t, ValidateStruct(&unitFixture{Unit: unit}), unit)
	}
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&usernameFixture{Username: ""})
	errors := GetValidationErrors(err)

	assert.Len(t, errors, 1)
	assert.Equal(t, "username", errors[0].Field)
	assert.Equal(t, "required", errors[0].Tag)
}
