package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados da Casa Mattos.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Erros de Entrada ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// --- Erros de Regra de Negócio (409) ---

// AlreadyAssignedError indica que o endereçamento já pertence a uma lista.
type AlreadyAssignedError struct {
	Msg string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("Endereçamento já vinculado: %s", e.Msg)
}
func (e *AlreadyAssignedError) Category() string { return "ALREADY_ASSIGNED" }
func (e *AlreadyAssignedError) HTTPStatus() int  { return http.StatusConflict }
func (e *AlreadyAssignedError) Unwrap() error    { return nil }

// NewAlreadyAssignedError cria um erro de endereçamento já vinculado a outra lista.
func NewAlreadyAssignedError(msg string) AppError {
	return &AlreadyAssignedError{Msg: msg}
}

// ListFinalizedError indica uma operação de escrita sobre lista finalizada.
type ListFinalizedError struct {
	Msg string
}

func (e *ListFinalizedError) Error() string    { return fmt.Sprintf("Lista finalizada: %s", e.Msg) }
func (e *ListFinalizedError) Category() string { return "LIST_FINALIZED" }
func (e *ListFinalizedError) HTTPStatus() int  { return http.StatusConflict }
func (e *ListFinalizedError) Unwrap() error    { return nil }

// NewListFinalizedError cria um erro de lista finalizada.
func NewListFinalizedError(msg string) AppError {
	return &ListFinalizedError{Msg: msg}
}

// InsufficientStockError indica que a movimentação deixaria um contador negativo.
type InsufficientStockError struct {
	Msg string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente: %s", e.Msg)
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusConflict }
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria um erro de estoque insuficiente.
func NewInsufficientStockError(msg string) AppError {
	return &InsufficientStockError{Msg: msg}
}

// InUseError indica que a exclusão está bloqueada por uma referência existente.
type InUseError struct {
	Msg string
}

func (e *InUseError) Error() string    { return fmt.Sprintf("Recurso em uso: %s", e.Msg) }
func (e *InUseError) Category() string { return "IN_USE" }
func (e *InUseError) HTTPStatus() int  { return http.StatusConflict }
func (e *InUseError) Unwrap() error    { return nil }

// NewInUseError cria um erro de recurso em uso.
func NewInUseError(msg string) AppError {
	return &InUseError{Msg: msg}
}

// ConflictError representa um conflito de estado (e.g., OCC, recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito (usado em OCC e unicidade).
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Erros de Autenticação ---

// UnauthorizedError representa credenciais ausentes, inválidas ou expiradas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro 401.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa um usuário autenticado sem a permissão necessária.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro 403.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// PersistenceError representa falhas da camada de armazenamento (conexão, timeout, SQL).
// O chamador pode tentar novamente; o núcleo nunca repete a operação.
type PersistenceError struct {
	Msg string
	Err error // Erro original do driver
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Erro de Persistência: %s", e.Msg)
	}
	return fmt.Sprintf("Erro de Persistência: %s: %s", e.Msg, e.Err.Error())
}
func (e *PersistenceError) Category() string { return "PERSISTENCE_ERROR" }
func (e *PersistenceError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *PersistenceError) Unwrap() error    { return e.Err }

// NewDBError é um atalho para criar um PersistenceError a partir de uma falha do DB.
func NewDBError(msg string, err error) AppError {
	return &PersistenceError{Msg: msg, Err: err}
}

// InternalError representa falhas inesperadas no servidor ou serviço.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Erro Interno: %s", e.Msg)
	}
	return fmt.Sprintf("Erro Interno: %s %s", e.Msg, e.Err.Error())
}
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// --- Helpers ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, categoria e mensagem.
// Erros envoltos com fmt.Errorf("%w") também são reconhecidos.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			// Não expõe detalhes do driver ao cliente.
			return appErr.HTTPStatus(), appErr.Category(), "Ocorreu um erro interno. Tente novamente."
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// IsAppError informa se err (ou algo em sua cadeia) é um erro de negócio (status < 500).
func IsAppError(err error) bool {
	var appErr AppError
	return stderrors.As(err, &appErr) && appErr.HTTPStatus() < http.StatusInternalServerError
}
