package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/models"
)

// Every method takes ctx first and every read that can miss returns nil, nil
// for "not found". Callers decide whether a miss is an error.

// ErrDuplicate is returned when a write collides with a uniqueness rule
// (email already registered, pending request already stored).
var ErrDuplicate = errors.New("duplicate record")

// UserRepository stores identity records.
type UserRepository interface {
	Create(ctx context.Context, email, displayName, photoURL, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, photoURL string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// StudentRepository stores profiles.
type StudentRepository interface {
	// Save inserts the student or replaces the stored profile with the same ID.
	Save(ctx context.Context, s *models.Student) error
	GetByID(ctx context.Context, studentID uuid.UUID) (*models.Student, error)
	// GetMany resolves a set of IDs. Missing students are simply absent
	// from the map.
	GetMany(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]models.Student, error)
	// List returns the whole roster ordered by name.
	List(ctx context.Context) ([]models.Student, error)
	Delete(ctx context.Context, studentID uuid.UUID) error
}

// TeamRepository stores teams and their member lists.
type TeamRepository interface {
	Create(ctx context.Context, t *models.Team) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	// ListByMember returns the teams containing studentID, newest first.
	ListByMember(ctx context.Context, studentID uuid.UUID) ([]models.Team, error)
	// AddMember appends studentID unless already present. Returns the
	// updated team, or nil if the team does not exist.
	AddMember(ctx context.Context, teamID, studentID uuid.UUID) (*models.Team, error)
	SetRegistration(ctx context.Context, teamID uuid.UUID, method string, at time.Time) error
}

// ConnectionRepository reads connections. Connections are only written by
// RequestRepository.Accept.
type ConnectionRepository interface {
	GetByID(ctx context.Context, connectionID uuid.UUID) (*models.Connection, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Connection, error)
	// Between finds the connection for the unordered pair (a, b).
	Between(ctx context.Context, a, b uuid.UUID) (*models.Connection, error)
}

// RequestRepository stores connection requests and resolves them.
type RequestRepository interface {
	// Create stores a pending request. Backends with a uniqueness rule on
	// pending (sender, receiver) pairs return ErrDuplicate.
	Create(ctx context.Context, r *models.ConnectionRequest) (*models.ConnectionRequest, error)
	GetByID(ctx context.Context, requestID uuid.UUID) (*models.ConnectionRequest, error)
	// FindPending looks for a pending request on the ordered pair.
	FindPending(ctx context.Context, senderID, receiverID uuid.UUID) (*models.ConnectionRequest, error)
	ListIncoming(ctx context.Context, receiverID uuid.UUID) ([]models.ConnectionRequest, error)
	ListOutgoing(ctx context.Context, senderID uuid.UUID) ([]models.ConnectionRequest, error)
	// Delete removes the request. Returns false if it was already gone.
	Delete(ctx context.Context, requestID uuid.UUID) (bool, error)
	// Accept deletes the request and creates the connection for its pair
	// in one step. If the pair is already connected, the existing
	// connection is returned. Returns nil, nil when the request is gone.
	Accept(ctx context.Context, requestID uuid.UUID) (*models.Connection, error)
}

// MessageRepository appends to and reads message threads.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	// ListByThread returns the thread oldest first.
	ListByThread(ctx context.Context, thread models.Thread) ([]models.Message, error)
}

// ParticipationRepository stores participations, always scoped to the
// owning student.
type ParticipationRepository interface {
	Create(ctx context.Context, p *models.Participation) (*models.Participation, error)
	GetByID(ctx context.Context, studentID, participationID uuid.UUID) (*models.Participation, error)
	// ListByStudent returns the student's participations, latest date first.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Participation, error)
	// Update replaces an existing participation. Returns nil, nil if missing.
	Update(ctx context.Context, p *models.Participation) (*models.Participation, error)
	Delete(ctx context.Context, studentID, participationID uuid.UUID) (bool, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Users          UserRepository
	Students       StudentRepository
	Teams          TeamRepository
	Connections    ConnectionRepository
	Requests       RequestRepository
	Messages       MessageRepository
	Participations ParticipationRepository
}
