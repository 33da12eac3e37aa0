package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/repository/memory"
	"github.com/lalith-99/campuslink/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	hub    *realtime.Hub
	store  repository.Store
}

func newTestServer(t *testing.T, authLimit int) *testServer {
	t.Helper()

	cat, err := catalog.Load("")
	require.NoError(t, err)

	logger := zap.NewNop()
	store := memory.NewStore()
	hub := realtime.NewHub(logger)
	issuer := auth.NewIssuer("test-secret", time.Hour)
	revoked := cache.NewMemoryRevocationList()

	svc := Services{
		Accounts:       service.NewAccounts(store, issuer, revoked, cat, logger),
		Students:       service.NewStudents(store, cat, logger),
		Discovery:      service.NewDiscovery(store, logger),
		Connections:    service.NewConnections(store, hub, logger),
		Teams:          service.NewTeams(store, cat, hub, logger),
		Threads:        service.NewThreads(store, hub, logger),
		Participations: service.NewParticipations(store, logger),
		Announcements:  service.NewAnnouncements(cat),
	}
	router := NewRouter(svc, RouterConfig{
		Issuer:      issuer,
		Revoked:     revoked,
		AuthLimiter: cache.NewMemoryRateLimiter(authLimit, time.Minute),
		Hub:         hub,
		Catalog:     cat,
		Logger:      logger,
	})
	return &testServer{router: router, hub: hub, store: store}
}

// do sends a JSON request and decodes the JSON response into out when out
// is non-nil.
func (s *testServer) do(t *testing.T, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

type signedUp struct {
	Token   string `json:"token"`
	Student struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		CollegeID string `json:"college_id"`
	} `json:"student"`
}

func (s *testServer) signup(t *testing.T, name, email string) signedUp {
	t.Helper()
	var res signedUp
	w := s.do(t, http.MethodPost, "/v1/auth/signup", "", gin.H{
		"name":       name,
		"email":      email,
		"password":   "secret123",
		"college_id": "3la21cs001",
	}, &res)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return res
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Fields []struct {
		Field string `json:"field"`
	} `json:"fields"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 10)
	w := s.do(t, http.MethodGet, "/v1/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupAndSignin(t *testing.T) {
	s := newTestServer(t, 100)

	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")
	assert.NotEmpty(t, ada.Token)
	assert.Equal(t, "Ada", ada.Student.FirstName)
	assert.Equal(t, "3LA21CS001", ada.Student.CollegeID)

	t.Run("duplicate email", func(t *testing.T) {
		var body errorBody
		w := s.do(t, http.MethodPost, "/v1/auth/signup", "", gin.H{
			"name": "Other", "email": "ada@campus.edu", "password": "secret123", "college_id": "3LA21CS002",
		}, &body)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, auth.CodeEmailAlreadyInUse, body.Code)
	})

	t.Run("bad college id", func(t *testing.T) {
		var body errorBody
		w := s.do(t, http.MethodPost, "/v1/auth/signup", "", gin.H{
			"name": "Bob", "email": "bob@campus.edu", "password": "secret123", "college_id": "XYZ1234567",
		}, &body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, auth.CodeInvalidCollegeID, body.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/auth/signup", "", gin.H{"email": "x@campus.edu"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		var body errorBody
		w := s.do(t, http.MethodPost, "/v1/auth/signin", "", gin.H{"email": "ada@campus.edu", "password": "nope-nope"}, &body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, auth.CodeInvalidCredential, body.Code)
	})

	t.Run("signin", func(t *testing.T) {
		var res signedUp
		w := s.do(t, http.MethodPost, "/v1/auth/signin", "", gin.H{"email": "ada@campus.edu", "password": "secret123"}, &res)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ada.Student.ID, res.Student.ID)
	})
}

func TestSignoutRevokesToken(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/me", ada.Token, nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/auth/signout", ada.Token, nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/me", ada.Token, nil, nil).Code)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	creds := gin.H{"email": "nobody@campus.edu", "password": "whatever"}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/v1/auth/signin", "", creds, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/v1/auth/signin", "", creds, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/v1/auth/signin", "", creds, nil).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, 10)
	for _, path := range []string{"/v1/me", "/v1/discover", "/v1/teams", "/v1/connections", "/v1/announcements"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "", nil, nil).Code, path)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")

	var me struct {
		Bio         string   `json:"bio"`
		InterestIDs []string `json:"interest_ids"`
	}
	w := s.do(t, http.MethodPatch, "/v1/me", ada.Token, gin.H{
		"bio":          "Engines",
		"interest_ids": []string{"Music"},
	}, &me)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Engines", me.Bio)
	assert.Equal(t, []string{"Music"}, me.InterestIDs)

	var body errorBody
	w = s.do(t, http.MethodPatch, "/v1/me", ada.Token, gin.H{
		"interest_ids": []string{"Music", "Sports", "Art", "Travel"},
	}, &body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body.Fields)
}

func TestConnectionFlowAndThread(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")
	alan := s.signup(t, "Alan Turing", "alan@campus.edu")
	eve := s.signup(t, "Eve Hopper", "eve@campus.edu")

	var req struct {
		ID string `json:"id"`
	}
	w := s.do(t, http.MethodPost, "/v1/requests", ada.Token, gin.H{"receiver_id": alan.Student.ID}, &req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var dup errorBody
	w = s.do(t, http.MethodPost, "/v1/requests", ada.Token, gin.H{"receiver_id": alan.Student.ID}, &dup)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.NoticeRequestSent, dup.Error)

	var incoming []json.RawMessage
	s.do(t, http.MethodGet, "/v1/requests/incoming", alan.Token, nil, &incoming)
	assert.Len(t, incoming, 1)

	// Only the receiver may accept.
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/v1/requests/"+req.ID+"/accept", ada.Token, nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/requests/not-a-uuid/accept", alan.Token, nil, nil).Code)

	var conn struct {
		ID string `json:"id"`
	}
	w = s.do(t, http.MethodPost, "/v1/requests/"+req.ID+"/accept", alan.Token, nil, &conn)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/v1/requests/"+req.ID+"/accept", alan.Token, nil, nil).Code)

	var conns []json.RawMessage
	s.do(t, http.MethodGet, "/v1/connections", ada.Token, nil, &conns)
	assert.Len(t, conns, 1)

	thread := "/v1/connections/" + conn.ID + "/messages"
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, thread, ada.Token, gin.H{"text": "hello"}, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, thread, eve.Token, gin.H{"text": "hi"}, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, thread, eve.Token, nil, nil).Code)

	var msgs struct {
		Messages []struct {
			Text string `json:"text"`
		} `json:"messages"`
	}
	w = s.do(t, http.MethodGet, thread, alan.Token, nil, &msgs)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, msgs.Messages, 1)
	assert.Equal(t, "hello", msgs.Messages[0].Text)
}

func TestTeams(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")
	alan := s.signup(t, "Alan Turing", "alan@campus.edu")
	eve := s.signup(t, "Eve Hopper", "eve@campus.edu")

	var team struct {
		ID      string   `json:"id"`
		Members []string `json:"members"`
	}
	w := s.do(t, http.MethodPost, "/v1/teams", ada.Token, gin.H{
		"name":        "Engines",
		"description": "Analytical engine club",
		"member_ids":  []string{alan.Student.ID},
	}, &team)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.ElementsMatch(t, []string{ada.Student.ID, alan.Student.ID}, team.Members)

	var page struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	s.do(t, http.MethodGet, "/v1/teams", alan.Token, nil, &page)
	assert.Equal(t, 1, page.Total)

	messages := "/v1/teams/" + team.ID + "/messages"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, messages, eve.Token, nil, nil).Code)
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, messages, alan.Token, gin.H{"text": "hi team"}, nil).Code)

	var body errorBody
	w = s.do(t, http.MethodPost, "/v1/teams", ada.Token, gin.H{
		"name": "Solo", "description": "Nobody else", "member_ids": []string{},
	}, &body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscover(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")
	s.signup(t, "Alan Turing", "alan@campus.edu")

	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	w := s.do(t, http.MethodGet, "/v1/discover?q=alan", ada.Token, nil, &page)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page.Items, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/discover?limit=abc", ada.Token, nil, nil).Code)
}

func TestDiscover_LoadMoreReachesWholeRoster(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")

	for i := 0; i < 120; i++ {
		require.NoError(t, s.store.Students.Save(context.Background(), &models.Student{
			ID:          uuid.New(),
			FirstName:   fmt.Sprintf("Student%03d", i),
			Email:       fmt.Sprintf("s%03d@campus.edu", i),
			InterestIDs: []string{},
			SkillIDs:    []string{},
		}))
	}

	type page struct {
		Items   []json.RawMessage `json:"items"`
		Total   int               `json:"total"`
		HasMore bool              `json:"has_more"`
	}

	var first page
	s.do(t, http.MethodGet, "/v1/discover", ada.Token, nil, &first)
	assert.Len(t, first.Items, 8)
	assert.Equal(t, 120, first.Total)
	assert.True(t, first.HasMore)

	var all page
	w := s.do(t, http.MethodGet, "/v1/discover?limit=120", ada.Token, nil, &all)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, all.Items, 120)
	assert.False(t, all.HasMore)
}

func TestParticipations(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")

	var p struct {
		ID string `json:"id"`
	}
	w := s.do(t, http.MethodPost, "/v1/me/participations", ada.Token, gin.H{
		"title": "Hackathon", "date": "2024-03-15", "category": "Project", "result": "Winner",
	}, &p)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, "/v1/me/participations/"+p.ID, ada.Token, gin.H{
		"title": "Hackathon", "date": "2024-03-16", "category": "Project", "result": "Runner-up",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/me/participations/"+p.ID, ada.Token, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/v1/me/participations/"+p.ID, ada.Token, nil, nil).Code)
}

func TestAnnouncements(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")

	var filtered struct {
		Announcements []struct {
			ID int `json:"id"`
		} `json:"announcements"`
	}
	w := s.do(t, http.MethodGet, "/v1/announcements?branch=cse&year=2", ada.Token, nil, &filtered)
	require.Equal(t, http.StatusOK, w.Code)
	var got []int
	for _, a := range filtered.Announcements {
		got = append(got, a.ID)
	}
	assert.Equal(t, []int{1, 5}, got)

	var sections map[string]json.RawMessage
	s.do(t, http.MethodGet, "/v1/announcements", ada.Token, nil, &sections)
	assert.Contains(t, sections, "general")
	assert.Contains(t, sections, "recent")
	assert.Contains(t, sections, "past")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/announcements?branch=LAW", ada.Token, nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/announcements?branch=CSE&year=9", ada.Token, nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/calendar?date=15-03-2024", ada.Token, nil, nil).Code)
}

func TestWebSocket(t *testing.T) {
	s := newTestServer(t, 10)
	ada := s.signup(t, "Ada Lovelace", "ada@campus.edu")
	alan := s.signup(t, "Alan Turing", "alan@campus.edu")

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?token=" + alan.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Another student's personal topic is off limits.
	require.NoError(t, conn.WriteJSON(clientCommand{Action: "subscribe", Topic: "student:" + ada.Student.ID}))
	var reply serverReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)

	w := s.do(t, http.MethodPost, "/v1/requests", ada.Token, gin.H{"receiver_id": alan.Student.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var e realtime.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, realtime.TypeRequestReceived, e.Type)
	assert.Equal(t, "student:"+alan.Student.ID, e.Topic)
}
