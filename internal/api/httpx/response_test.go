package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/internal/api/httpx"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

func TestRespond_ErrorStatusTable(t *testing.T) {
	rs := httpx.NewResponder(logger.NewLogger("error"))

	casos := []struct {
		err      error
		status   int
		category string
	}{
		{apperror.NewValidationError("x"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperror.NewUnauthorizedError("x"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{apperror.NewForbiddenError("x"), http.StatusForbidden, "FORBIDDEN"},
		{apperror.NewNotFoundError("x"), http.StatusNotFound, "NOT_FOUND"},
		{apperror.NewAlreadyAssignedError("x"), http.StatusConflict, "ALREADY_ASSIGNED"},
		{apperror.NewInUseError("x"), http.StatusConflict, "IN_USE"},
		{apperror.NewListFinalizedError("x"), http.StatusConflict, "LIST_FINALIZED"},
		{apperror.NewConflictError("x"), http.StatusConflict, "CONFLICT"},
		{apperror.NewInsufficientStockError("x"), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{apperror.NewDBError("x", errors.New("driver")), http.StatusInternalServerError, "PERSISTENCE_ERROR"},
		{errors.New("qualquer"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, c := range casos {
		t.Run(c.category, func(t *testing.T) {
			rr := httptest.NewRecorder()
			rs.Respond(rr, httptest.NewRequest(http.MethodGet, "/v1/x", nil), nil, c.err, http.StatusOK)

			assert.Equal(t, c.status, rr.Code)
			var body httpx.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, c.category, body.Category)
		})
	}
}

func TestRespond_PersistenceErrorNaoExpoeDriver(t *testing.T) {
	rs := httpx.NewResponder(logger.NewLogger("error"))
	rr := httptest.NewRecorder()

	rs.Respond(rr, httptest.NewRequest(http.MethodGet, "/", nil), nil, apperror.NewDBError("falha", errors.New("pq: senha do banco")), http.StatusOK)

	assert.NotContains(t, rr.Body.String(), "senha do banco")
}

func TestRespond_Success(t *testing.T) {
	rs := httpx.NewResponder(logger.NewLogger("error"))
	rr := httptest.NewRecorder()

	rs.Respond(rr, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{"id": 7}, nil, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":7}}`, rr.Body.String())
}

func TestPathID(t *testing.T) {
	mux := http.NewServeMux()
	var got int64
	var gotErr error
	mux.HandleFunc("GET /x/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = httpx.PathID(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/abc", nil))
	var validationErr *apperror.ValidationError
	assert.True(t, errors.As(gotErr, &validationErr))
}

func TestDecode_RejeitaCamposDesconhecidos(t *testing.T) {
	var dst struct {
		Nome string `json:"nome"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nome":"a","extra":1}`))

	err := httpx.Decode(r, &dst)

	var validationErr *apperror.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
