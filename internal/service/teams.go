package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/validate"
	"go.uber.org/zap"
)

type CreateTeamInput struct {
	Name        string
	Description string
	MemberIDs   []uuid.UUID
}

// TeamView is a team with its members' profiles. Members whose profile no
// longer exists are left out of MemberStudents.
type TeamView struct {
	models.Team
	MemberStudents []models.Student `json:"member_students"`
	IsMember       bool             `json:"is_member"`
}

type Teams struct {
	store   repository.Store
	catalog *catalog.Catalog
	events  publisher
	logger  *zap.Logger
	now     func() time.Time
}

func NewTeams(store repository.Store, cat *catalog.Catalog, events realtime.Publisher, logger *zap.Logger) *Teams {
	return &Teams{
		store:   store,
		catalog: cat,
		events:  publisher{events: events, logger: logger},
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create makes a team of the caller plus at least one other known student.
func (t *Teams) Create(ctx context.Context, session auth.Session, in CreateTeamInput) (*models.Team, error) {
	members := []uuid.UUID{session.StudentID}
	seen := map[uuid.UUID]bool{session.StudentID: true}
	selected := make([]uuid.UUID, 0, len(in.MemberIDs))
	for _, id := range in.MemberIDs {
		if !seen[id] {
			seen[id] = true
			members = append(members, id)
			selected = append(selected, id)
		}
	}
	if len(selected) == 0 {
		return nil, apperr.Invalid("invalid team", apperr.FieldError{Field: "member_ids", Message: "select at least one team member"})
	}

	known, err := t.store.Students.GetMany(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}
	for _, id := range selected {
		if _, ok := known[id]; !ok {
			return nil, apperr.Invalid("invalid team", apperr.FieldError{Field: "member_ids", Message: "unknown student " + id.String()})
		}
	}

	team := &models.Team{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Members:     members,
		CreatedBy:   session.StudentID,
	}
	if err := validate.Team(team); err != nil {
		return nil, err
	}

	created, err := t.store.Teams.Create(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	for _, id := range created.Members {
		t.events.toStudent(ctx, id, realtime.TypeTeamJoined, created)
	}

	t.logger.Info("team created",
		zap.String("team_id", created.ID.String()),
		zap.Int("members", len(created.Members)),
	)
	return created, nil
}

// AddMember lets any member add a known student. Adding a current member
// changes nothing.
func (t *Teams) AddMember(ctx context.Context, session auth.Session, teamID, studentID uuid.UUID) (*models.Team, error) {
	team, err := t.memberOf(ctx, session, teamID)
	if err != nil {
		return nil, err
	}
	if team.HasMember(studentID) {
		return team, nil
	}

	st, err := t.store.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, apperr.NotFound("student not found")
	}

	updated, err := t.store.Teams.AddMember(ctx, teamID, studentID)
	if err != nil {
		return nil, fmt.Errorf("add team member: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("team not found")
	}
	t.events.toStudent(ctx, studentID, realtime.TypeTeamJoined, updated)
	return updated, nil
}

// ListMine lists the caller's teams, filtered by a case-insensitive
// substring of name or description.
func (t *Teams) ListMine(ctx context.Context, session auth.Session, term string, limit int) (*Page[models.Team], error) {
	teams, err := t.store.Teams.ListByMember(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	term = strings.TrimSpace(term)
	out := make([]models.Team, 0, len(teams))
	for _, team := range teams {
		if term == "" || containsFold(team.Name, term) || containsFold(team.Description, term) {
			out = append(out, team)
		}
	}
	return takeFirst(out, limit, TeamPageSize), nil
}

func (t *Teams) Get(ctx context.Context, session auth.Session, teamID uuid.UUID) (*TeamView, error) {
	team, err := t.get(ctx, teamID)
	if err != nil {
		return nil, err
	}

	students, err := t.store.Students.GetMany(ctx, team.Members)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}
	view := &TeamView{
		Team:           *team,
		MemberStudents: make([]models.Student, 0, len(team.Members)),
		IsMember:       team.HasMember(session.StudentID),
	}
	for _, id := range team.Members {
		if st, ok := students[id]; ok {
			view.MemberStudents = append(view.MemberStudents, st)
		}
	}
	return view, nil
}

// Register records the team's event registration, paid with one of the
// catalog payment methods. No payment is taken.
func (t *Teams) Register(ctx context.Context, session auth.Session, teamID uuid.UUID, paymentMethod string) (*models.Team, error) {
	team, err := t.memberOf(ctx, session, teamID)
	if err != nil {
		return nil, err
	}
	method, ok := t.catalog.PaymentMethod(paymentMethod)
	if !ok {
		return nil, apperr.Invalid("invalid registration", apperr.FieldError{Field: "payment_method", Message: "choose a supported payment method"})
	}

	at := t.now()
	if err := t.store.Teams.SetRegistration(ctx, team.ID, method.ID, at); err != nil {
		return nil, fmt.Errorf("register team: %w", err)
	}
	team.RegisteredVia = method.ID
	team.RegisteredAt = &at

	t.logger.Info("team registered",
		zap.String("team_id", team.ID.String()),
		zap.String("payment_method", method.ID),
	)
	return team, nil
}

func (t *Teams) get(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	team, err := t.store.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if team == nil {
		return nil, apperr.NotFound("team not found")
	}
	return team, nil
}

func (t *Teams) memberOf(ctx context.Context, session auth.Session, teamID uuid.UUID) (*models.Team, error) {
	team, err := t.get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.HasMember(session.StudentID) {
		return nil, apperr.Forbidden("you are not a member of this team")
	}
	return team, nil
}
