package models

import (
	"context"
	"database/sql"
)

// DBTX is the narrow database surface the model helpers need. *db.DB
// satisfies it; declaring it here keeps the layering one-way (db may
// import models, never the reverse).
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
