package dbmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationName(t *testing.T) {
	assert.Equal(t, "select", operationName("SELECT id FROM bookings"))
	assert.Equal(t, "insert", operationName("  INSERT INTO bookings (id) VALUES ($1)"))
	assert.Equal(t, "unknown", operationName("   "))
}

func TestGetExecutor_PrefersTransaction(t *testing.T) {
	fallback := &SqlTxWrapper{}
	tx := &SqlTxWrapper{}

	assert.Same(t, fallback, GetExecutor(context.Background(), fallback))
	assert.False(t, IsInTransaction(context.Background()))

	ctx := WithTx(context.Background(), tx)
	assert.Same(t, tx, GetExecutor(ctx, fallback))
	assert.True(t, IsInTransaction(ctx))
}
