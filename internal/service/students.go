package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/validate"
	"go.uber.org/zap"
)

// ProfileUpdate is a full profile form submission.
type ProfileUpdate struct {
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Bio               string
	InterestIDs       []string
	SkillIDs          []string
}

type Students struct {
	store   repository.Store
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewStudents(store repository.Store, cat *catalog.Catalog, logger *zap.Logger) *Students {
	return &Students{store: store, catalog: cat, logger: logger}
}

func (s *Students) Me(ctx context.Context, session auth.Session) (*models.Student, error) {
	return s.Get(ctx, session, session.StudentID)
}

func (s *Students) Get(ctx context.Context, _ auth.Session, studentID uuid.UUID) (*models.Student, error) {
	st, err := s.store.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, apperr.NotFound("student not found")
	}
	return st, nil
}

// UpdateProfile applies a profile form. Blank names fall back to the
// identity display name, a blank picture keeps the current one. Interests
// and skills must come from the catalog. The identity record follows the
// new name and picture.
func (s *Students) UpdateProfile(ctx context.Context, session auth.Session, in ProfileUpdate) (*models.Student, error) {
	current, err := s.Me(ctx, session)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetByID(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	updated := *current
	updated.FirstName = strings.TrimSpace(in.FirstName)
	updated.LastName = strings.TrimSpace(in.LastName)
	updated.Bio = strings.TrimSpace(in.Bio)
	updated.ProfilePictureURL = strings.TrimSpace(in.ProfilePictureURL)

	if user != nil {
		first, last := splitName(user.DisplayName)
		if updated.FirstName == "" {
			updated.FirstName = first
		}
		if updated.LastName == "" {
			updated.LastName = last
		}
	}
	if updated.ProfilePictureURL == "" {
		updated.ProfilePictureURL = current.ProfilePictureURL
	}

	var fields []apperr.FieldError
	updated.InterestIDs, fields = canonicalTags(in.InterestIDs, "interest_ids", s.catalog.Interest, fields)
	updated.SkillIDs, fields = canonicalTags(in.SkillIDs, "skill_ids", s.catalog.Skill, fields)
	if len(fields) > 0 {
		return nil, apperr.Invalid("invalid profile", fields...)
	}
	if err := validate.Student(&updated); err != nil {
		return nil, err
	}

	if err := s.store.Students.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save student: %w", err)
	}

	if user != nil && (user.DisplayName != updated.FullName() || user.PhotoURL != updated.ProfilePictureURL) {
		if err := s.store.Users.UpdateProfile(ctx, user.ID, updated.FullName(), updated.ProfilePictureURL); err != nil {
			return nil, fmt.Errorf("update identity profile: %w", err)
		}
	}
	return &updated, nil
}

// canonicalTags maps names to their catalog spelling and drops duplicates.
// Unknown names are reported as field errors.
func canonicalTags(names []string, field string, lookup func(string) (string, bool), fields []apperr.FieldError) ([]string, []apperr.FieldError) {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		c, ok := lookup(n)
		if !ok {
			fields = append(fields, apperr.FieldError{Field: field, Message: fmt.Sprintf("%q is not a known option", n)})
			continue
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, fields
}
