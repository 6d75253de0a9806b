package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"casamattos/internal/pkg/database"
)

func TestPostgresErrorClassification(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &pq.Error{Code: "23503"}
	check := fmt.Errorf("update: %w", &pq.Error{Code: "23514"})

	assert.True(t, database.IsUniqueViolation(unique))
	assert.False(t, database.IsUniqueViolation(fk))
	assert.True(t, database.IsForeignKeyViolation(fk))
	assert.True(t, database.IsCheckViolation(check))
	assert.False(t, database.IsCheckViolation(errors.New("timeout")))
}
