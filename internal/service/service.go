// Package service implements the domain operations behind the HTTP API.
//
// Every operation acting for a student takes the caller's auth.Session
// explicitly. Services validate before writing, return apperr values for
// user-facing failures, and publish realtime events after a successful
// write. A failed publish is logged and never fails the operation.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/realtime"
	"go.uber.org/zap"
)

// Default page sizes for take-first-N listings.
const (
	DiscoveryPageSize     = 8
	TeamPageSize          = 5
	ParticipationPageSize = 5
)

// Page is the first Limit items of a listing plus how many there are in
// total. Clients load more by asking for a larger limit.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

func takeFirst[T any](items []T, limit, defaultLimit int) *Page[T] {
	if limit <= 0 {
		limit = defaultLimit
	}
	p := &Page[T]{Items: items, Total: len(items)}
	if len(items) > limit {
		p.Items = items[:limit]
		p.HasMore = true
	}
	return p
}

// containsFold reports whether substr is within s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// splitName splits a display name into first word and the rest.
func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// publisher wraps a realtime.Publisher with logging.
type publisher struct {
	events realtime.Publisher
	logger *zap.Logger
}

func (p publisher) toStudent(ctx context.Context, studentID uuid.UUID, eventType string, payload any) {
	p.publish(ctx, realtime.StudentTopic(studentID), eventType, payload)
}

func (p publisher) publish(ctx context.Context, topic, eventType string, payload any) {
	if p.events == nil {
		return
	}
	e, err := realtime.NewEvent(topic, eventType, payload)
	if err == nil {
		err = p.events.Publish(ctx, e)
	}
	if err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("topic", topic),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}
