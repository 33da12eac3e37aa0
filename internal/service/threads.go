package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/validate"
	"go.uber.org/zap"
)

// Threads reads and appends team and connection messages. Team threads are
// open to members, connection threads to the two parties.
type Threads struct {
	store  repository.Store
	events publisher
	logger *zap.Logger
}

func NewThreads(store repository.Store, events realtime.Publisher, logger *zap.Logger) *Threads {
	return &Threads{store: store, events: publisher{events: events, logger: logger}, logger: logger}
}

func (t *Threads) PostTeamMessage(ctx context.Context, session auth.Session, teamID uuid.UUID, text string) (*models.Message, error) {
	return t.post(ctx, session, models.Thread{Kind: models.ThreadTeam, ID: teamID}, text)
}

func (t *Threads) PostConnectionMessage(ctx context.Context, session auth.Session, connectionID uuid.UUID, text string) (*models.Message, error) {
	return t.post(ctx, session, models.Thread{Kind: models.ThreadConnection, ID: connectionID}, text)
}

func (t *Threads) TeamMessages(ctx context.Context, session auth.Session, teamID uuid.UUID) ([]models.Message, error) {
	return t.list(ctx, session, models.Thread{Kind: models.ThreadTeam, ID: teamID})
}

func (t *Threads) ConnectionMessages(ctx context.Context, session auth.Session, connectionID uuid.UUID) ([]models.Message, error) {
	return t.list(ctx, session, models.Thread{Kind: models.ThreadConnection, ID: connectionID})
}

func (t *Threads) post(ctx context.Context, session auth.Session, thread models.Thread, text string) (*models.Message, error) {
	if err := t.Authorize(ctx, session, thread); err != nil {
		return nil, err
	}
	// Teams keep deleted students in their member lists, and a deleted
	// account may still hold other unexpired tokens.
	sender, err := t.store.Students.GetByID(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}
	if sender == nil {
		return nil, auth.Error(auth.CodeUserNotFound)
	}

	msg := &models.Message{
		Thread:   thread,
		SenderID: session.StudentID,
		Text:     strings.TrimSpace(text),
	}
	if err := validate.Message(msg); err != nil {
		return nil, err
	}

	created, err := t.store.Messages.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	t.events.publish(ctx, thread.Topic(), realtime.TypeMessageCreated, created)
	return created, nil
}

func (t *Threads) list(ctx context.Context, session auth.Session, thread models.Thread) ([]models.Message, error) {
	if err := t.Authorize(ctx, session, thread); err != nil {
		return nil, err
	}
	msgs, err := t.store.Messages.ListByThread(ctx, thread)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Authorize checks that the caller may read and post in thread.
func (t *Threads) Authorize(ctx context.Context, session auth.Session, thread models.Thread) error {
	switch thread.Kind {
	case models.ThreadTeam:
		team, err := t.store.Teams.GetByID(ctx, thread.ID)
		if err != nil {
			return fmt.Errorf("get team: %w", err)
		}
		if team == nil {
			return apperr.NotFound("team not found")
		}
		if !team.HasMember(session.StudentID) {
			return apperr.Forbidden("you are not a member of this team")
		}
	case models.ThreadConnection:
		conn, err := t.store.Connections.GetByID(ctx, thread.ID)
		if err != nil {
			return fmt.Errorf("get connection: %w", err)
		}
		if conn == nil {
			return apperr.NotFound("connection not found")
		}
		if !conn.Involves(session.StudentID) {
			return apperr.Forbidden("you are not part of this connection")
		}
	default:
		return apperr.Invalid("unknown thread kind " + string(thread.Kind))
	}
	return nil
}

// AuthorizeTopic checks a realtime subscription: a student topic only for
// the caller, a thread topic for anyone who may read the thread.
func (t *Threads) AuthorizeTopic(ctx context.Context, session auth.Session, topic string) error {
	kind, rawID, ok := strings.Cut(topic, ":")
	if !ok {
		return apperr.Invalid("malformed topic")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return apperr.Invalid("malformed topic")
	}
	if kind == "student" {
		if id != session.StudentID {
			return apperr.Forbidden("cannot subscribe to another student's events")
		}
		return nil
	}
	return t.Authorize(ctx, session, models.Thread{Kind: models.ThreadKind(kind), ID: id})
}
