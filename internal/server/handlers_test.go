package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo/debatearena_backend/internal/auth"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/debate"
	"github.com/neo/debatearena_backend/internal/judge"
	"github.com/neo/debatearena_backend/internal/matchmaking"
	"github.com/neo/debatearena_backend/internal/notify"
	"github.com/neo/debatearena_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// newTestServer wires a server around the mock database. The judge is a
// bare chain; tests that exercise judging configure the mock to cover
// the fallback path instead.
func newTestServer(t *testing.T, db database.DatabaseInterface) (*Server, *auth.Auth) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := auth.New(auth.Config{JWTSecret: testJWTSecret})
	hub := notify.NewHub()
	machine := debate.NewMachine(db, hub, judge.NewChain())
	engine := matchmaking.NewEngine(db, hub, machine)

	return New(db, hub, engine, machine, authService, nil, Config{JWTSecret: testJWTSecret}), authService
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterSuccess(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetUserByUsername", "alice").Return(nil, errors.New("user not found"))
	db.On("CreateUser", mock.AnythingOfType("*database.User"), "Password123!").Return(nil)

	srv, _ := newTestServer(t, db)
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/register", "", map[string]interface{}{
		"username": "alice",
		"password": "Password123!",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "token")
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetUserByUsername", "alice").Return(&database.User{ID: "u1", Username: "alice"}, nil)

	srv, _ := newTestServer(t, db)
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/register", "", map[string]interface{}{
		"username": "alice",
		"password": "Password123!",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	db.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t, new(MockDatabase))

	// Too-short username and password
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/register", "", map[string]interface{}{
		"username": "ab",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	db := new(MockDatabase)
	db.On("VerifyPassword", "alice", "Password123!").Return(&database.User{ID: "u1", Username: "alice"}, nil)
	db.On("VerifyPassword", "alice", "wrong").Return(nil, errors.New("invalid password"))

	srv, _ := newTestServer(t, db)

	w := doJSON(t, srv.Router(), http.MethodPost, "/api/login", "", map[string]interface{}{
		"username": "alice", "password": "Password123!",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	w = doJSON(t, srv.Router(), http.MethodPost, "/api/login", "", map[string]interface{}{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetDebateNotFound(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetDebate", "missing").Return(nil, errors.New("debate not found"))

	srv, _ := newTestServer(t, db)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/debates/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDebateEnrichesResponse(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetDebate", "d1").Return(&database.Debate{
		ID:                "d1",
		TopicID:           7,
		AffirmativeUserID: "u1",
		OppositionUserID:  "u2",
		Status:            types.StatusActive,
		CurrentTurn:       types.SideAffirmative,
		CurrentRound:      1,
		MaxRounds:         3,
	}, nil)
	db.On("GetTopic", int64(7)).Return(&database.Topic{ID: 7, Title: "Test topic"}, nil)
	db.On("GetUserByID", "u1").Return(&database.User{ID: "u1", Username: "alice"}, nil)
	db.On("GetUserByID", "u2").Return(&database.User{ID: "u2", Username: "bob"}, nil)
	db.On("GetArgumentsByDebate", "d1").Return([]*database.Argument{
		{ID: 1, DebateID: "d1", UserID: "u1", Round: 1, Side: types.SideAffirmative, Content: "opening"},
	}, nil)

	srv, _ := newTestServer(t, db)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/debates/d1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response, "debate")
	assert.Contains(t, response, "topic")
	assert.Contains(t, response, "affirmative")
	assert.Contains(t, response, "opposition")
	assert.Contains(t, response, "arguments")
}

func TestListDebatesRequiresUserID(t *testing.T) {
	srv, _ := newTestServer(t, new(MockDatabase))
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/debates", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitArgumentRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, new(MockDatabase))
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/arguments", "", map[string]interface{}{
		"debateId": "d1", "side": "affirmative", "content": "hello",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitArgumentErrorMapping(t *testing.T) {
	longEnough := strings.TrimSpace(strings.Repeat("word ", 60))

	tests := []struct {
		name       string
		setup      func(db *MockDatabase)
		userID     string
		side       string
		content    string
		wantStatus int
	}{
		{
			name: "unknown debate",
			setup: func(db *MockDatabase) {
				db.On("GetDebate", "d1").Return(nil, errors.New("debate not found"))
			},
			userID: "u1", side: "affirmative", content: longEnough,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "non participant",
			setup: func(db *MockDatabase) {
				db.On("GetDebate", "d1").Return(activeTestDebate(), nil)
			},
			userID: "stranger", side: "affirmative", content: longEnough,
			wantStatus: http.StatusForbidden,
		},
		{
			name: "out of turn",
			setup: func(db *MockDatabase) {
				db.On("GetDebate", "d1").Return(activeTestDebate(), nil)
			},
			userID: "u2", side: "opposition", content: longEnough,
			wantStatus: http.StatusConflict,
		},
		{
			name: "too short",
			setup: func(db *MockDatabase) {
				db.On("GetDebate", "d1").Return(activeTestDebate(), nil)
			},
			userID: "u1", side: "affirmative", content: "way too short",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "invalid side string",
			setup:  func(db *MockDatabase) {},
			userID: "u1", side: "neutral", content: longEnough,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDatabase)
			tt.setup(db)

			srv, authService := newTestServer(t, db)
			token, err := authService.GenerateToken(tt.userID, tt.userID)
			require.NoError(t, err)

			w := doJSON(t, srv.Router(), http.MethodPost, "/api/arguments", token, map[string]interface{}{
				"debateId": "d1", "side": tt.side, "content": tt.content,
			})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSubmitArgumentRejectsMismatchedUserID(t *testing.T) {
	srv, authService := newTestServer(t, new(MockDatabase))
	token, err := authService.GenerateToken("u1", "alice")
	require.NoError(t, err)

	w := doJSON(t, srv.Router(), http.MethodPost, "/api/arguments", token, map[string]interface{}{
		"debateId": "d1", "userId": "somebody-else", "side": "affirmative",
		"content": strings.TrimSpace(strings.Repeat("word ", 60)),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitArgumentSuccess(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetDebate", "d1").Return(activeTestDebate(), nil)
	db.On("CreateArgument", mock.AnythingOfType("*database.Argument")).Return(int64(1), nil)
	db.On("UpdateDebateStatus", "d1", types.StatusActive, types.SideOpposition, 1).Return(nil)

	srv, authService := newTestServer(t, db)
	token, err := authService.GenerateToken("u1", "alice")
	require.NoError(t, err)

	content := strings.TrimSpace(strings.Repeat("word ", 75))
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/arguments", token, map[string]interface{}{
		"debateId": "d1", "side": "affirmative", "content": content,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var argument database.Argument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &argument))
	assert.Equal(t, 1, argument.Round)
	assert.Equal(t, types.SideAffirmative, argument.Side)
}

func TestGetTopics(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetTopics").Return([]*database.Topic{{ID: 1, Title: "One", Difficulty: 2}}, nil)

	srv, _ := newTestServer(t, db)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/topics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "One")
}

func TestGenerateTopicsWithoutGenerator(t *testing.T) {
	srv, authService := newTestServer(t, new(MockDatabase))
	token, err := authService.GenerateToken("u1", "alice")
	require.NoError(t, err)

	w := doJSON(t, srv.Router(), http.MethodPost, "/api/topics/generate", token, map[string]interface{}{"count": 3})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetAchievements(t *testing.T) {
	db := new(MockDatabase)
	db.On("GetAchievementsByUser", "u1").Return([]*database.Achievement{
		{ID: 1, UserID: "u1", Type: "first_win"},
	}, nil)

	srv, _ := newTestServer(t, db)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/achievements?userId=u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first_win")

	w = doJSON(t, srv.Router(), http.MethodGet, "/api/achievements", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, new(MockDatabase))
	w := doJSON(t, srv.Router(), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, new(MockDatabase))

	req := httptest.NewRequest(http.MethodOptions, "/api/topics", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func activeTestDebate() *database.Debate {
	return &database.Debate{
		ID:                "d1",
		TopicID:           7,
		AffirmativeUserID: "u1",
		OppositionUserID:  "u2",
		Status:            types.StatusActive,
		CurrentTurn:       types.SideAffirmative,
		CurrentRound:      1,
		MaxRounds:         3,
		TimePerTurn:       300,
	}
}
