package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/campuslink/internal/models"
)

const teamReturning = "RETURNING id, name, description, members, created_by, created_at, registered_via, registered_at"

var teamColumns = []string{
	"id", "name", "description", "members", "created_by", "created_at", "registered_via", "registered_at",
}

type TeamStore struct {
	pool *pgxpool.Pool
}

func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

func (s *TeamStore) Create(ctx context.Context, t *models.Team) (*models.Team, error) {
	sql, args, err := psql.Insert("teams").
		Columns("name", "description", "members", "created_by").
		Values(t.Name, t.Description, t.Members, t.CreatedBy).
		Suffix(teamReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert team: %w", err)
	}

	team, err := scanTeam(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("insert team: %w", err)
	}
	return team, nil
}

func (s *TeamStore) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	sql, args, err := psql.Select(teamColumns...).
		From("teams").
		Where(squirrel.Eq{"id": teamID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get team: %w", err)
	}

	team, err := scanTeam(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

// ListByMember uses the GIN index on members through the @> operator.
func (s *TeamStore) ListByMember(ctx context.Context, studentID uuid.UUID) ([]models.Team, error) {
	sql, args, err := psql.Select(teamColumns...).
		From("teams").
		Where("members @> ARRAY[?]::uuid[]", studentID).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list teams: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, nil
}

// AddMember is idempotent: a student already in the array is not appended
// twice, and the unchanged team is returned.
func (s *TeamStore) AddMember(ctx context.Context, teamID, studentID uuid.UUID) (*models.Team, error) {
	sql, args, err := psql.Update("teams").
		Set("members", squirrel.Expr(
			"CASE WHEN ? = ANY(members) THEN members ELSE array_append(members, ?) END",
			studentID, studentID,
		)).
		Where(squirrel.Eq{"id": teamID}).
		Suffix(teamReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build add team member: %w", err)
	}

	team, err := scanTeam(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("add team member: %w", err)
	}
	return team, nil
}

func (s *TeamStore) SetRegistration(ctx context.Context, teamID uuid.UUID, method string, at time.Time) error {
	sql, args, err := psql.Update("teams").
		Set("registered_via", method).
		Set("registered_at", at).
		Where(squirrel.Eq{"id": teamID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build register team: %w", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("register team: %w", err)
	}
	return nil
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var (
		t   models.Team
		via *string
	)
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Members,
		&t.CreatedBy,
		&t.CreatedAt,
		&via,
		&t.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	if via != nil {
		t.RegisteredVia = *via
	}
	return &t, nil
}
