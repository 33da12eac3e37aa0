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

// date is read back as text so it keeps the YYYY-MM-DD form.
const participationReturning = "RETURNING id, student_id, title, description, date::text, category, result, created_at"

var participationColumns = []string{
	"id", "student_id", "title", "description", "date::text", "category", "result", "created_at",
}

type ParticipationStore struct {
	pool *pgxpool.Pool
}

func NewParticipationStore(pool *pgxpool.Pool) *ParticipationStore {
	return &ParticipationStore{pool: pool}
}

func (s *ParticipationStore) Create(ctx context.Context, p *models.Participation) (*models.Participation, error) {
	sql, args, err := psql.Insert("participations").
		Columns("student_id", "title", "description", "date", "category", "result").
		Values(p.StudentID, p.Title, p.Description, squirrel.Expr("?::date", p.Date), string(p.Category), p.Result).
		Suffix(participationReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert participation: %w", err)
	}

	out, err := scanParticipation(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("insert participation: %w", err)
	}
	return out, nil
}

func (s *ParticipationStore) GetByID(ctx context.Context, studentID, participationID uuid.UUID) (*models.Participation, error) {
	sql, args, err := psql.Select(participationColumns...).
		From("participations").
		Where(squirrel.Eq{"id": participationID, "student_id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get participation: %w", err)
	}

	p, err := scanParticipation(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get participation: %w", err)
	}
	return p, nil
}

func (s *ParticipationStore) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Participation, error) {
	sql, args, err := psql.Select(participationColumns...).
		From("participations").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list participations: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	out := make([]models.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participations: %w", err)
	}
	return out, nil
}

func (s *ParticipationStore) Update(ctx context.Context, p *models.Participation) (*models.Participation, error) {
	sql, args, err := psql.Update("participations").
		Set("title", p.Title).
		Set("description", p.Description).
		Set("date", squirrel.Expr("?::date", p.Date)).
		Set("category", string(p.Category)).
		Set("result", p.Result).
		Where(squirrel.Eq{"id": p.ID, "student_id": p.StudentID}).
		Suffix(participationReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update participation: %w", err)
	}

	out, err := scanParticipation(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update participation: %w", err)
	}
	return out, nil
}

func (s *ParticipationStore) Delete(ctx context.Context, studentID, participationID uuid.UUID) (bool, error) {
	sql, args, err := psql.Delete("participations").
		Where(squirrel.Eq{"id": participationID, "student_id": studentID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete participation: %w", err)
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("delete participation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanParticipation(row pgx.Row) (*models.Participation, error) {
	var (
		p        models.Participation
		category string
	)
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.Title,
		&p.Description,
		&p.Date,
		&category,
		&p.Result,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = models.ParticipationCategory(category)
	return &p, nil
}
