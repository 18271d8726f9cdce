package server

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/debate"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/types"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName"`
	AvatarID    int    `json:"avatarId"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if _, err := s.db.GetUserByUsername(req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &database.User{
		ID:          uuid.New().String(),
		Username:    req.Username,
		DisplayName: displayName,
		AvatarID:    req.AvatarID,
	}
	if err := s.db.CreateUser(user, req.Password); err != nil {
		logging.Error("Failed to create user", map[string]interface{}{
			"username": req.Username,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	token, err := s.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	user, err := s.db.VerifyPassword(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := s.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.db.GetUserByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type submitArgumentRequest struct {
	DebateID string `json:"debateId" binding:"required"`
	UserID   string `json:"userId"`
	Round    int    `json:"round"`
	Side     string `json:"side" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// handleSubmitArgument is the single write entry point into a running
// debate. The authenticated user is authoritative; a userId in the body
// may only confirm it, and the round is always derived from the debate
// state, never trusted from the client.
func (s *Server) handleSubmitArgument(c *gin.Context) {
	var req submitArgumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	userID := c.GetString("userID")
	if req.UserID != "" && req.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match the authenticated user"})
		return
	}

	side, err := types.ParseSide(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid side: " + req.Side})
		return
	}
	argument, err := s.machine.SubmitArgument(c.Request.Context(), req.DebateID, userID, side, req.Content)
	if err != nil {
		s.writeSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, argument)
}

// writeSubmitError maps state machine errors onto HTTP statuses
func (s *Server) writeSubmitError(c *gin.Context, err error) {
	var tooShort *debate.ArgumentTooShortError
	switch {
	case errors.Is(err, debate.ErrDebateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, debate.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, debate.ErrDebateNotActive),
		errors.Is(err, debate.ErrSideMismatch),
		errors.Is(err, debate.ErrNotYourTurn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &tooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.Error("Argument submission failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit argument"})
	}
}

// handleGetDebate returns the full state of one debate: the row, its
// topic, both participants and every argument so far. Reads are
// side-effect free and safe to poll.
func (s *Server) handleGetDebate(c *gin.Context) {
	debateRow, err := s.machine.GetDebate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "debate not found"})
		return
	}

	response := gin.H{"debate": debateRow}

	if topic, err := s.db.GetTopic(debateRow.TopicID); err == nil {
		response["topic"] = topic
	}
	if affirmative, err := s.db.GetUserByID(debateRow.AffirmativeUserID); err == nil {
		response["affirmative"] = affirmative
	}
	if opposition, err := s.db.GetUserByID(debateRow.OppositionUserID); err == nil {
		response["opposition"] = opposition
	}

	arguments, err := s.db.GetArgumentsByDebate(debateRow.ID)
	if err != nil {
		logging.Error("Failed to load arguments", map[string]interface{}{
			"debate_id": debateRow.ID,
			"error":     err.Error(),
		})
		arguments = nil
	}
	response["arguments"] = arguments

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleListDebates(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}

	debates, err := s.db.GetDebatesByUser(userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load debates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"debates": debates})
}

func (s *Server) handleGetTopics(c *gin.Context) {
	topicList, err := s.db.GetTopics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load topics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topicList})
}

type generateTopicsRequest struct {
	Count int `json:"count"`
}

// handleGenerateTopics generates new topics with the LLM and persists
// them. Generation degrades to the default list, so this only fails on
// database errors.
func (s *Server) handleGenerateTopics(c *gin.Context) {
	if s.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "topic generation is not configured"})
		return
	}

	var req generateTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Count <= 0 || req.Count > 20 {
		req.Count = 5
	}

	titles := s.generator.Generate(c.Request.Context(), req.Count)

	created := make([]*database.Topic, 0, len(titles))
	for _, title := range titles {
		topic, err := s.db.CreateTopic(title, 1+rand.Intn(5))
		if err != nil {
			logging.Error("Failed to save generated topic", map[string]interface{}{
				"title": title,
				"error": err.Error(),
			})
			continue
		}
		created = append(created, topic)
	}

	c.JSON(http.StatusCreated, gin.H{"topics": created})
}

func (s *Server) handleGetAchievements(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}

	achievements, err := s.db.GetAchievementsByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load achievements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}
