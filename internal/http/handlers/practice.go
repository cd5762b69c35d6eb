package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizprep-backend/internal/http/response"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/services"
)

type PracticeHandler struct {
	log      *logger.Logger
	practice services.PracticeService
}

func NewPracticeHandler(log *logger.Logger, practice services.PracticeService) *PracticeHandler {
	return &PracticeHandler{log: log.With("handler", "PracticeHandler"), practice: practice}
}

// POST /api/quizzes/:id/sessions
// body (optional): { "language": "de", "mode": "text" | "audio" }
func (h *PracticeHandler) StartSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	quizID, ok := uuidParam(c, "id", "invalid_quiz_id")
	if !ok {
		return
	}
	var req struct {
		Language string `json:"language"`
		Mode     string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sess, err := h.practice.StartOrResume(dbcFrom(c), userID, quizID, services.StartOptions{
		Language: requestLanguage(c, req.Language),
		Mode:     req.Mode,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// GET /api/practice/active?type=QUESTIONS|LANGUAGE
func (h *PracticeHandler) ActiveSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sess, err := h.practice.ActiveSession(dbcFrom(c), userID, c.Query("type"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// GET /api/sessions/:id
func (h *PracticeHandler) GetSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	st, err := h.practice.GetCurrentState(dbcFrom(c), sessionID, userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, st)
}

// PATCH /api/sessions/:id/mode
// body: { "mode": "text" | "audio" }
func (h *PracticeHandler) SetMode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sess, err := h.practice.SetAnswerMode(dbcFrom(c), sessionID, userID, req.Mode)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/complete
func (h *PracticeHandler) Complete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	sess, err := h.practice.Complete(dbcFrom(c), sessionID, userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// POST /api/sessions/:id/abandon
func (h *PracticeHandler) Abandon(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	sess, err := h.practice.Abandon(dbcFrom(c), sessionID, userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// GET /api/sessions/:id/summary
func (h *PracticeHandler) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	sum, err := h.practice.Summary(dbcFrom(c), sessionID, userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sum)
}
