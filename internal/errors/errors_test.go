package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "casamattos/internal/errors"
)

func TestMapToHTTPStatus_ErroEnvolvido(t *testing.T) {
	err := fmt.Errorf("finalizar lista 3: %w", apperror.NewInsufficientStockError("depósito 5, pedido 10"))

	status, category, message := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", category)
	assert.Contains(t, message, "depósito 5")
}

func TestMapToHTTPStatus_OcultaCausaInterna(t *testing.T) {
	status, category, message := apperror.MapToHTTPStatus(apperror.NewDBError("falha", stderrors.New("pq: deadlock detected")))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "PERSISTENCE_ERROR", category)
	assert.NotContains(t, message, "deadlock")
}

func TestPersistenceError_Unwrap(t *testing.T) {
	causa := stderrors.New("conexão recusada")
	err := apperror.NewDBError("falha ao buscar", causa)

	assert.ErrorIs(t, err, causa)
	assert.False(t, apperror.IsAppError(err))
	assert.True(t, apperror.IsAppError(apperror.NewNotFoundError("x")))
	assert.False(t, apperror.IsAppError(stderrors.New("x")))
}
