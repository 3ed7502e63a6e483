package pgerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(fmt.Errorf("wrap: %w", driver.ErrBadConn)))
	assert.True(t, IsUnavailable(context.DeadlineExceeded))
	assert.True(t, IsUnavailable(&pq.Error{Code: "08006"}))
	assert.True(t, IsUnavailable(&pq.Error{Code: "57P01"}))
	assert.False(t, IsUnavailable(&pq.Error{Code: "23505"}))
	assert.False(t, IsUnavailable(errors.New("syntax")))
	assert.False(t, IsUnavailable(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "uq_time_slot_active"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "uq_time_slot_active"))
	assert.False(t, IsUniqueViolation(err, "coupons_code_key"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "40001"}, ""))
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40001"}))
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40P01"}))
	assert.False(t, IsSerializationFailure(&pq.Error{Code: "08006"}))
}
