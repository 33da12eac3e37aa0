package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/repository"
	"go.uber.org/zap"
)

// Relationship of the caller to a discovered student.
const (
	RelationNone      = "none"
	RelationPending   = "pending"
	RelationConnected = "connected"
)

// Card is one discovery result.
type Card struct {
	models.Student
	Relationship string `json:"relationship"`
}

type Discovery struct {
	store  repository.Store
	logger *zap.Logger
}

func NewDiscovery(store repository.Store, logger *zap.Logger) *Discovery {
	return &Discovery{store: store, logger: logger}
}

// Search filters the roster, minus the caller, by a case-insensitive
// substring of the full name or of any interest. A blank term matches
// everyone. There is no ranking: results keep roster order.
func (d *Discovery) Search(ctx context.Context, session auth.Session, term string, limit int) (*Page[Card], error) {
	roster, err := d.store.Students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	relations, err := d.relations(ctx, session.StudentID)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	cards := make([]Card, 0, len(roster))
	for _, st := range roster {
		if st.ID == session.StudentID || !matches(st, term) {
			continue
		}
		rel, ok := relations[st.ID]
		if !ok {
			rel = RelationNone
		}
		cards = append(cards, Card{Student: st, Relationship: rel})
	}
	return takeFirst(cards, limit, DiscoveryPageSize), nil
}

func matches(st models.Student, term string) bool {
	if term == "" {
		return true
	}
	if containsFold(st.FirstName+" "+st.LastName, term) {
		return true
	}
	for _, interest := range st.InterestIDs {
		if containsFold(interest, term) {
			return true
		}
	}
	return false
}

func (d *Discovery) relations(ctx context.Context, studentID uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)

	outgoing, err := d.store.Requests.ListOutgoing(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	for _, r := range outgoing {
		out[r.ReceiverID] = RelationPending
	}

	conns, err := d.store.Connections.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	for _, c := range conns {
		out[c.Other(studentID)] = RelationConnected
	}
	return out, nil
}
