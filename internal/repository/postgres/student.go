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

var studentColumns = []string{
	"id", "first_name", "last_name", "email", "college_id",
	"profile_picture_url", "bio", "interest_ids", "skill_ids",
}

type StudentStore struct {
	pool *pgxpool.Pool
}

func NewStudentStore(pool *pgxpool.Pool) *StudentStore {
	return &StudentStore{pool: pool}
}

// Save upserts on id. Every column except id is overwritten.
func (s *StudentStore) Save(ctx context.Context, st *models.Student) error {
	sql, args, err := psql.Insert("students").
		Columns(studentColumns...).
		Values(
			st.ID, st.FirstName, st.LastName, st.Email, st.CollegeID,
			st.ProfilePictureURL, st.Bio, nonNil(st.InterestIDs), nonNil(st.SkillIDs),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			college_id = EXCLUDED.college_id,
			profile_picture_url = EXCLUDED.profile_picture_url,
			bio = EXCLUDED.bio,
			interest_ids = EXCLUDED.interest_ids,
			skill_ids = EXCLUDED.skill_ids`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save student: %w", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save student: %w", err)
	}
	return nil
}

func (s *StudentStore) GetByID(ctx context.Context, studentID uuid.UUID) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get student: %w", err)
	}

	st, err := scanStudent(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return st, nil
}

func (s *StudentStore) GetMany(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]models.Student, error) {
	out := make(map[uuid.UUID]models.Student, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}

	sql, args, err := psql.Select(studentColumns...).
		From("students").
		Where("id = ANY(?)", studentIDs).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get students: %w", err)
	}

	students, err := s.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	for _, st := range students {
		out[st.ID] = st
	}
	return out, nil
}

func (s *StudentStore) List(ctx context.Context) ([]models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).
		From("students").
		OrderBy("first_name", "last_name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list students: %w", err)
	}
	return s.query(ctx, sql, args...)
}

// Delete removes the profile. Participations go with it through the
// foreign key; teams, messages and connections stay.
func (s *StudentStore) Delete(ctx context.Context, studentID uuid.UUID) error {
	sql, args, err := psql.Delete("students").Where(squirrel.Eq{"id": studentID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete student: %w", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

func (s *StudentStore) query(ctx context.Context, sql string, args ...any) ([]models.Student, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var st models.Student
	err := row.Scan(
		&st.ID,
		&st.FirstName,
		&st.LastName,
		&st.Email,
		&st.CollegeID,
		&st.ProfilePictureURL,
		&st.Bio,
		&st.InterestIDs,
		&st.SkillIDs,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
