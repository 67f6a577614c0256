package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsValidation(t *testing.T) {
	err := NewValidation("TSHIRT", "product not found")
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("item failed: %w", err)))
	assert.Contains(t, err.Error(), "TSHIRT")

	assert.True(t, IsValidation(&MissingDefaultError{Kind: "warehouse"}))
	assert.False(t, IsValidation(errors.New("boom")))
	assert.False(t, IsValidation(NewPrecondition("role")))
}

func TestIsPrecondition(t *testing.T) {
	err := NewPrecondition(`role "admin"`)
	assert.True(t, IsPrecondition(err))
	assert.True(t, IsPrecondition(fmt.Errorf("aborting: %w", err)))
	assert.Contains(t, err.Error(), "not found")

	assert.False(t, IsPrecondition(NewValidation("x", "y")))
}

func TestIsConstraintViolation(t *testing.T) {
	assert.True(t, IsConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsConstraintViolation(fmt.Errorf("insert failed: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, IsConstraintViolation(gorm.ErrRecordNotFound))
	assert.False(t, IsConstraintViolation(nil))
}

func TestMissingDefaultErrorMessage(t *testing.T) {
	err := &MissingDefaultError{Kind: "unit"}
	assert.Contains(t, err.Error(), "no default unit")
}
