// Package memory is an in-process backend for the repository interfaces.
// It backs STORE=memory and the service tests. All stores share one lock so
// multi-table steps such as accepting a request stay atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/repository"
)

type db struct {
	mu sync.RWMutex

	users          map[uuid.UUID]models.User
	students       map[uuid.UUID]models.Student
	teams          map[uuid.UUID]models.Team
	connections    map[uuid.UUID]models.Connection
	requests       map[uuid.UUID]models.ConnectionRequest
	messages       []models.Message
	participations map[uuid.UUID]models.Participation

	nextMessageID int64
	now           func() time.Time
}

// NewStore returns a fresh, empty in-memory backend.
func NewStore() repository.Store {
	d := &db{
		users:          make(map[uuid.UUID]models.User),
		students:       make(map[uuid.UUID]models.Student),
		teams:          make(map[uuid.UUID]models.Team),
		connections:    make(map[uuid.UUID]models.Connection),
		requests:       make(map[uuid.UUID]models.ConnectionRequest),
		participations: make(map[uuid.UUID]models.Participation),
		now:            func() time.Time { return time.Now().UTC() },
	}
	return repository.Store{
		Users:          (*userStore)(d),
		Students:       (*studentStore)(d),
		Teams:          (*teamStore)(d),
		Connections:    (*connectionStore)(d),
		Requests:       (*requestStore)(d),
		Messages:       (*messageStore)(d),
		Participations: (*participationStore)(d),
	}
}

// Users

type userStore db

func (s *userStore) Create(_ context.Context, email, displayName, photoURL, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, repository.ErrDuplicate
		}
	}
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PhotoURL:     photoURL,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *userStore) GetByID(_ context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *userStore) UpdateProfile(_ context.Context, userID uuid.UUID, displayName, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.DisplayName = displayName
		u.PhotoURL = photoURL
		s.users[userID] = u
	}
	return nil
}

func (s *userStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
	return nil
}

// Students

type studentStore db

func (s *studentStore) Save(_ context.Context, st *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students[st.ID] = cloneStudent(*st)
	return nil
}

func (s *studentStore) GetByID(_ context.Context, studentID uuid.UUID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[studentID]
	if !ok {
		return nil, nil
	}
	st = cloneStudent(st)
	return &st, nil
}

func (s *studentStore) GetMany(_ context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]models.Student, len(studentIDs))
	for _, id := range studentIDs {
		if st, ok := s.students[id]; ok {
			out[id] = cloneStudent(st)
		}
	}
	return out, nil
}

func (s *studentStore) List(_ context.Context) ([]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, cloneStudent(st))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Delete cascades to the student's participations only.
func (s *studentStore) Delete(_ context.Context, studentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.students, studentID)
	for id, p := range s.participations {
		if p.StudentID == studentID {
			delete(s.participations, id)
		}
	}
	return nil
}

func cloneStudent(st models.Student) models.Student {
	st.InterestIDs = append([]string{}, st.InterestIDs...)
	st.SkillIDs = append([]string{}, st.SkillIDs...)
	return st
}

// Teams

type teamStore db

func (s *teamStore) Create(_ context.Context, t *models.Team) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team := cloneTeam(*t)
	team.ID = uuid.New()
	team.CreatedAt = s.now()
	s.teams[team.ID] = team

	out := cloneTeam(team)
	return &out, nil
}

func (s *teamStore) GetByID(_ context.Context, teamID uuid.UUID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[teamID]
	if !ok {
		return nil, nil
	}
	t = cloneTeam(t)
	return &t, nil
}

func (s *teamStore) ListByMember(_ context.Context, studentID uuid.UUID) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Team, 0)
	for _, t := range s.teams {
		if t.HasMember(studentID) {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *teamStore) AddMember(_ context.Context, teamID, studentID uuid.UUID) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teams[teamID]
	if !ok {
		return nil, nil
	}
	if !t.HasMember(studentID) {
		t.Members = append(t.Members, studentID)
		s.teams[teamID] = t
	}
	out := cloneTeam(t)
	return &out, nil
}

func (s *teamStore) SetRegistration(_ context.Context, teamID uuid.UUID, method string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.teams[teamID]; ok {
		t.RegisteredVia = method
		t.RegisteredAt = &at
		s.teams[teamID] = t
	}
	return nil
}

func cloneTeam(t models.Team) models.Team {
	t.Members = append([]uuid.UUID{}, t.Members...)
	if t.RegisteredAt != nil {
		at := *t.RegisteredAt
		t.RegisteredAt = &at
	}
	return t
}

// Connections

type connectionStore db

func (s *connectionStore) GetByID(_ context.Context, connectionID uuid.UUID) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.connections[connectionID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *connectionStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Connection, 0)
	for _, c := range s.connections {
		if c.Involves(studentID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ConnectionDate.Equal(out[j].ConnectionDate) {
			return out[i].ConnectionDate.After(out[j].ConnectionDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *connectionStore) Between(_ context.Context, a, b uuid.UUID) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return (*db)(s).between(a, b), nil
}

func (d *db) between(a, b uuid.UUID) *models.Connection {
	for _, c := range d.connections {
		if c.Involves(a) && c.Other(a) == b {
			return &c
		}
	}
	return nil
}

// Requests

type requestStore db

func (s *requestStore) Create(_ context.Context, r *models.ConnectionRequest) (*models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if (*db)(s).findPending(r.SenderID, r.ReceiverID) != nil {
		return nil, repository.ErrDuplicate
	}
	req := models.ConnectionRequest{
		ID:          uuid.New(),
		SenderID:    r.SenderID,
		ReceiverID:  r.ReceiverID,
		Status:      models.RequestPending,
		RequestDate: s.now(),
	}
	s.requests[req.ID] = req
	return &req, nil
}

func (s *requestStore) GetByID(_ context.Context, requestID uuid.UUID) (*models.ConnectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[requestID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *requestStore) FindPending(_ context.Context, senderID, receiverID uuid.UUID) (*models.ConnectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return (*db)(s).findPending(senderID, receiverID), nil
}

func (d *db) findPending(senderID, receiverID uuid.UUID) *models.ConnectionRequest {
	for _, r := range d.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == models.RequestPending {
			return &r
		}
	}
	return nil
}

func (s *requestStore) ListIncoming(_ context.Context, receiverID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.list(func(r models.ConnectionRequest) bool { return r.ReceiverID == receiverID }), nil
}

func (s *requestStore) ListOutgoing(_ context.Context, senderID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.list(func(r models.ConnectionRequest) bool { return r.SenderID == senderID }), nil
}

func (s *requestStore) list(match func(models.ConnectionRequest) bool) []models.ConnectionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ConnectionRequest, 0)
	for _, r := range s.requests {
		if r.Status == models.RequestPending && match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestDate.Equal(out[j].RequestDate) {
			return out[i].RequestDate.After(out[j].RequestDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *requestStore) Delete(_ context.Context, requestID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[requestID]; !ok {
		return false, nil
	}
	delete(s.requests, requestID)
	return true, nil
}

func (s *requestStore) Accept(_ context.Context, requestID uuid.UUID) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return nil, nil
	}
	delete(s.requests, requestID)
	for id, other := range s.requests {
		if other.SenderID == r.ReceiverID && other.ReceiverID == r.SenderID && other.Status == models.RequestPending {
			delete(s.requests, id)
		}
	}

	if c := (*db)(s).between(r.SenderID, r.ReceiverID); c != nil {
		return c, nil
	}
	c := models.Connection{
		ID:             uuid.New(),
		StudentID1:     r.SenderID,
		StudentID2:     r.ReceiverID,
		ConnectionDate: s.now(),
	}
	s.connections[c.ID] = c
	return &c, nil
}

// Messages

type messageStore db

func (s *messageStore) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Timestamps never run backwards in id order, even if the wall clock does.
	at := s.now()
	if n := len(s.messages); n > 0 && at.Before(s.messages[n-1].Timestamp) {
		at = s.messages[n-1].Timestamp
	}

	s.nextMessageID++
	msg := models.Message{
		ID:        s.nextMessageID,
		Thread:    m.Thread,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Timestamp: at,
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

// ListByThread relies on messages being appended in id order.
func (s *messageStore) ListByThread(_ context.Context, thread models.Thread) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.Thread == thread {
			out = append(out, m)
		}
	}
	return out, nil
}

// Participations

type participationStore db

func (s *participationStore) Create(_ context.Context, p *models.Participation) (*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *p
	out.ID = uuid.New()
	out.CreatedAt = s.now()
	s.participations[out.ID] = out
	return &out, nil
}

func (s *participationStore) GetByID(_ context.Context, studentID, participationID uuid.UUID) (*models.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participations[participationID]
	if !ok || p.StudentID != studentID {
		return nil, nil
	}
	return &p, nil
}

func (s *participationStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]models.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Participation, 0)
	for _, p := range s.participations {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	// YYYY-MM-DD sorts lexically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *participationStore) Update(_ context.Context, p *models.Participation) (*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.participations[p.ID]
	if !ok || existing.StudentID != p.StudentID {
		return nil, nil
	}
	out := *p
	out.CreatedAt = existing.CreatedAt
	s.participations[out.ID] = out
	return &out, nil
}

func (s *participationStore) Delete(_ context.Context, studentID, participationID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participations[participationID]
	if !ok || p.StudentID != studentID {
		return false, nil
	}
	delete(s.participations, participationID)
	return true, nil
}
