package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

// SuccessResponse é o envelope das respostas de sucesso.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse é o envelope das respostas de erro.
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Responder padroniza as respostas JSON dos handlers.
type Responder struct {
	Logger logger.Logger
}

// NewResponder cria um Responder com o logger informado.
func NewResponder(log logger.Logger) Responder {
	return Responder{Logger: log}
}

// Respond processa erros de serviço e envia respostas padronizadas ao cliente.
func (rs Responder) Respond(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err != nil {
		rs.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(successStatus)
	if successStatus == http.StatusNoContent {
		return
	}
	if jsonErr := json.NewEncoder(w).Encode(SuccessResponse{Success: true, Data: data}); jsonErr != nil {
		rs.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
	}
}

// Error traduz err para o status HTTP e escreve o envelope de erro.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		rs.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		rs.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Category: category, Message: message})
}

// Decode lê o corpo JSON em dst. Campos desconhecidos são rejeitados.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// PathID lê um segmento {name} da rota como inteiro positivo.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser um inteiro positivo.", name))
	}
	return id, nil
}

// QueryInt lê um parâmetro inteiro opcional da query string.
func QueryInt(r *http.Request, name string, padrao int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return padrao, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser um número inteiro.", name))
	}
	return v, nil
}

// QueryInt64Ptr lê um id opcional da query string; ausente vira nil.
func QueryInt64Ptr(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser um número inteiro.", name))
	}
	return &v, nil
}
