package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/campuslink/internal/models"
)

var connectionColumns = []string{"id", "student_id_1", "student_id_2", "connection_date"}

type ConnectionStore struct {
	pool *pgxpool.Pool
}

func NewConnectionStore(pool *pgxpool.Pool) *ConnectionStore {
	return &ConnectionStore{pool: pool}
}

func (s *ConnectionStore) GetByID(ctx context.Context, connectionID uuid.UUID) (*models.Connection, error) {
	return getConnection(ctx, s.pool, squirrel.Eq{"id": connectionID})
}

func (s *ConnectionStore) Between(ctx context.Context, a, b uuid.UUID) (*models.Connection, error) {
	return getConnection(ctx, s.pool, pairOf(a, b))
}

func (s *ConnectionStore) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Connection, error) {
	sql, args, err := psql.Select(connectionColumns...).
		From("connections").
		Where(squirrel.Or{
			squirrel.Eq{"student_id_1": studentID},
			squirrel.Eq{"student_id_2": studentID},
		}).
		OrderBy("connection_date DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list connections: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	connections := make([]models.Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		connections = append(connections, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return connections, nil
}

// pairOf matches the unordered pair (a, b).
func pairOf(a, b uuid.UUID) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"student_id_1": a, "student_id_2": b},
		squirrel.Eq{"student_id_1": b, "student_id_2": a},
	}
}

func getConnection(ctx context.Context, q querier, where squirrel.Sqlizer) (*models.Connection, error) {
	sql, args, err := psql.Select(connectionColumns...).
		From("connections").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get connection: %w", err)
	}

	c, err := scanConnection(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return c, nil
}

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	if err := row.Scan(&c.ID, &c.StudentID1, &c.StudentID2, &c.ConnectionDate); err != nil {
		return nil, err
	}
	return &c, nil
}
