package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/campuslink/internal/repository"
)

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// querier is what a store needs from a pool or a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewStore wires every Postgres-backed repository to one pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Users:          NewUserStore(pool),
		Students:       NewStudentStore(pool),
		Teams:          NewTeamStore(pool),
		Connections:    NewConnectionStore(pool),
		Requests:       NewRequestStore(pool),
		Messages:       NewMessageStore(pool),
		Participations: NewParticipationStore(pool),
	}
}

// isUniqueViolation reports a 23505 unique_violation from Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
