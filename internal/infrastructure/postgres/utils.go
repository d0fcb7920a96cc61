package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registra el dialecto "postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

// Querier lo que comparten *pgxpool.Pool y pgx.Tx; los repos funcionan con cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql constructor de consultas (goqu) con placeholders $n para pgx.
var psql = goqu.Dialect("postgres")

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeInvalidTextRepr      = "22P02"
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
	return pgCode(err) == codeUniqueViolation
}

// dbError envuelve un error de pgx con la operación. Vencer lock_timeout es domain.ErrBusy;
// fallos de serialización y deadlocks son domain.ErrConflict (ambos reintentables).
// Un id que no es UUID válido no puede existir: domain.ErrNotFound.
func dbError(op string, err error) error {
	switch pgCode(err) {
	case codeInvalidTextRepr:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case codeLockNotAvailable:
		return fmt.Errorf("%s: %w (%v)", op, domain.ErrBusy, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w (%v)", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// toSQL arma la consulta goqu en modo preparado.
func toSQL(ds interface {
	ToSQL() (string, []any, error)
}) (string, []any, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("construir consulta: %w", err)
	}
	return sql, args, nil
}

// nullString "" se guarda como NULL (ids opcionales).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// from SELECT preparado sobre la tabla.
func from(table string) *goqu.SelectDataset {
	return psql.From(table).Prepared(true)
}

// paginate aplica limit/offset; limit 0 = sin límite.
func paginate(ds *goqu.SelectDataset, limit, offset int) *goqu.SelectDataset {
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return ds
}
