package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizprep-backend/internal/http/response"
	"github.com/yungbote/quizprep-backend/internal/platform/apierr"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/services"
)

const (
	sseEventFeedback = "feedback"
	sseEventResult   = "result"
	sseEventError    = "error"
)

type AnswerHandler struct {
	log            *logger.Logger
	answers        services.AnswerService
	practice       services.PracticeService
	maxUploadBytes int64
}

func NewAnswerHandler(log *logger.Logger, answers services.AnswerService, practice services.PracticeService, maxUploadBytes int64) *AnswerHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &AnswerHandler{
		log:            log.With("handler", "AnswerHandler"),
		answers:        answers,
		practice:       practice,
		maxUploadBytes: maxUploadBytes,
	}
}

type answerResult struct {
	Answer any                    `json:"answer"`
	State  *services.SessionState `json:"state"`
}

// POST /api/sessions/:id/answers
// body: { "question_id": "...", "answer": "..." }
func (h *AnswerHandler) SubmitText(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	var req struct {
		QuestionID string `json:"question_id" validate:"required,uuid"`
		Answer     string `json:"answer" validate:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	questionID := uuid.MustParse(req.QuestionID)

	ans, err := h.answers.SubmitText(dbcFrom(c), userID, sessionID, questionID, req.Answer)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	st, err := h.practice.GetCurrentState(dbcFrom(c), sessionID, userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, answerResult{Answer: ans, State: st})
}

// POST /api/sessions/:id/answers/audio
// multipart: question_id, audio
// Streams "feedback" events while the evaluation runs, then one "result"
// event with the stored answer and the refreshed state. Ownership and
// integrity failures are plain JSON errors; failures after the stream has
// started arrive as an "error" event.
func (h *AnswerHandler) SubmitAudio(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	questionID, err := uuid.Parse(formValue(c, "question_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_audio", err)
		return
	}
	up, err := readFormFile(fh, h.maxUploadBytes)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_audio", err)
		return
	}

	if err := h.answers.CheckAudio(dbcFrom(c), userID, sessionID, questionID); err != nil {
		response.RespondErr(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	onFeedback := func(chunk string) {
		c.SSEvent(sseEventFeedback, gin.H{"text": chunk})
		c.Writer.Flush()
	}
	ans, err := h.answers.SubmitAudio(dbcFrom(c), userID, sessionID, questionID, services.AudioUpload{
		Data:     up.Data,
		MimeType: up.MimeType,
		Filename: up.Filename,
	}, onFeedback)
	if err != nil {
		h.streamError(c, err)
		return
	}
	st, err := h.practice.GetCurrentState(dbcFrom(c), sessionID, userID)
	if err != nil {
		h.streamError(c, err)
		return
	}
	c.SSEvent(sseEventResult, answerResult{Answer: ans, State: st})
	c.Writer.Flush()
}

func (h *AnswerHandler) streamError(c *gin.Context, err error) {
	payload := response.APIError{Message: "internal server error", Code: "internal_error"}
	if ae, ok := apierr.As(err); ok {
		payload = response.APIError{Message: ae.Error(), Code: ae.Code}
	} else {
		h.log.Error("Audio answer failed", "error", err)
	}
	c.SSEvent(sseEventError, response.ErrorEnvelope{Error: payload})
	c.Writer.Flush()
}
