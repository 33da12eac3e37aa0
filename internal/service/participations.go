package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/validate"
	"go.uber.org/zap"
)

type ParticipationInput struct {
	Title       string
	Description string
	Date        string
	Category    models.ParticipationCategory
	Result      string
}

// Participations manages the caller's own participation records.
type Participations struct {
	store  repository.Store
	logger *zap.Logger
}

func NewParticipations(store repository.Store, logger *zap.Logger) *Participations {
	return &Participations{store: store, logger: logger}
}

// List returns the caller's participations, latest date first.
func (p *Participations) List(ctx context.Context, session auth.Session, limit int) (*Page[models.Participation], error) {
	items, err := p.store.Participations.ListByStudent(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return takeFirst(items, limit, ParticipationPageSize), nil
}

func (p *Participations) Add(ctx context.Context, session auth.Session, in ParticipationInput) (*models.Participation, error) {
	rec := in.record(session.StudentID)
	if err := validate.Participation(rec); err != nil {
		return nil, err
	}
	created, err := p.store.Participations.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create participation: %w", err)
	}
	return created, nil
}

func (p *Participations) Update(ctx context.Context, session auth.Session, id uuid.UUID, in ParticipationInput) (*models.Participation, error) {
	rec := in.record(session.StudentID)
	rec.ID = id
	if err := validate.Participation(rec); err != nil {
		return nil, err
	}
	updated, err := p.store.Participations.Update(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("update participation: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("participation not found")
	}
	return updated, nil
}

func (p *Participations) Delete(ctx context.Context, session auth.Session, id uuid.UUID) error {
	deleted, err := p.store.Participations.Delete(ctx, session.StudentID, id)
	if err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	if !deleted {
		return apperr.NotFound("participation not found")
	}
	return nil
}

func (in ParticipationInput) record(studentID uuid.UUID) *models.Participation {
	return &models.Participation{
		StudentID:   studentID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        strings.TrimSpace(in.Date),
		Category:    in.Category,
		Result:      strings.TrimSpace(in.Result),
	}
}
