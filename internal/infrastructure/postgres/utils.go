package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/hub-inventory/internal/domain"
)

// Querier abstrae pgxpool.Pool y pgx.Tx para que los repositorios sirvan dentro y fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE usados por los adaptadores.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidTextRepr      = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if pgCode(err) == codeUniqueViolation {
		return true
	}
	return err != nil && strings.Contains(err.Error(), codeUniqueViolation)
}

// isInvalidID indica un ID que no es un UUID válido: para las búsquedas equivale a "no existe".
func isInvalidID(err error) bool {
	return pgCode(err) == codeInvalidTextRepr
}

// isConcurrencyConflict serialización, deadlock o lock_timeout: el caller puede reintentar.
func isConcurrencyConflict(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// classify traduce un error del driver a los errores de dominio. Los errores de dominio pasan intactos.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	switch {
	case isConcurrencyConflict(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrConcurrencyConflict, op, err)
	case pgCode(err) == codeForeignKeyViolation, isInvalidID(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrNotFound, op, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrDuplicate, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrUserNotFound, domain.ErrInvalidInput, domain.ErrDuplicate, domain.ErrConflict,
		domain.ErrInsufficientStock, domain.ErrConcurrencyConflict, domain.ErrPersistence,
		domain.ErrForbidden, domain.ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// nullable convierte "" en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func itoa(n int) string { return strconv.Itoa(n) }
