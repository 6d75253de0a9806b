package database

import (
	"errors"

	"github.com/lib/pq"
)

// Códigos SQLSTATE do PostgreSQL tratados pelos repositórios.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

func pqCode(err error) (pq.ErrorCode, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code, true
	}
	return "", false
}

// IsUniqueViolation informa se err é uma violação de chave única.
func IsUniqueViolation(err error) bool {
	code, ok := pqCode(err)
	return ok && code == uniqueViolation
}

// IsForeignKeyViolation informa se err é uma violação de chave estrangeira.
func IsForeignKeyViolation(err error) bool {
	code, ok := pqCode(err)
	return ok && code == foreignKeyViolation
}

// IsCheckViolation informa se err é uma violação de CHECK (e.g., estoque negativo).
func IsCheckViolation(err error) bool {
	code, ok := pqCode(err)
	return ok && code == checkViolation
}
