package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store   repository.Store
	catalog *catalog.Catalog
	hub     *realtime.Hub
	revoked *cache.MemoryRevocationList
	issuer  *auth.Issuer

	accounts       *Accounts
	students       *Students
	discovery      *Discovery
	connections    *Connections
	teams          *Teams
	threads        *Threads
	participations *Participations
	announcements  *Announcements
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.Load("")
	require.NoError(t, err)

	logger := zap.NewNop()
	f := &fixture{
		store:   memory.NewStore(),
		catalog: cat,
		hub:     realtime.NewHub(logger),
		revoked: cache.NewMemoryRevocationList(),
		issuer:  auth.NewIssuer("test-secret", time.Hour),
	}
	f.accounts = NewAccounts(f.store, f.issuer, f.revoked, cat, logger)
	f.students = NewStudents(f.store, cat, logger)
	f.discovery = NewDiscovery(f.store, logger)
	f.connections = NewConnections(f.store, f.hub, logger)
	f.teams = NewTeams(f.store, cat, f.hub, logger)
	f.threads = NewThreads(f.store, f.hub, logger)
	f.participations = NewParticipations(f.store, logger)
	f.announcements = NewAnnouncements(cat)
	return f
}

// addStudent stores a profile directly and returns a session for it.
func (f *fixture) addStudent(t *testing.T, first, last string, interests ...string) auth.Session {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.store.Students.Save(context.Background(), &models.Student{
		ID:          id,
		FirstName:   first,
		LastName:    last,
		Email:       first + "@campus.edu",
		InterestIDs: interests,
		SkillIDs:    []string{},
	}))
	return auth.Session{StudentID: id, Email: first + "@campus.edu", TokenID: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}
}

// connect makes a and b connected through an accepted request.
func (f *fixture) connect(t *testing.T, a, b auth.Session) *models.Connection {
	t.Helper()
	ctx := context.Background()
	req, err := f.connections.SendRequest(ctx, a, b.StudentID)
	require.NoError(t, err)
	conn, err := f.connections.AcceptRequest(ctx, b, req.ID)
	require.NoError(t, err)
	return conn
}

func (f *fixture) subscribe(t *testing.T, topic string) *realtime.Subscription {
	t.Helper()
	sub := f.hub.Subscribe()
	sub.Join(topic)
	t.Cleanup(sub.Close)
	return sub
}

func nextEvent(t *testing.T, sub *realtime.Subscription) realtime.Event {
	t.Helper()
	select {
	case e := <-sub.C():
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return realtime.Event{}
}
