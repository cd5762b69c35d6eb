package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizprep-backend/internal/http/response"
	"github.com/yungbote/quizprep-backend/internal/services"
)

type SpeechHandler struct {
	speech services.SpeechService
}

func NewSpeechHandler(speech services.SpeechService) *SpeechHandler {
	return &SpeechHandler{speech: speech}
}

// GET /api/questions/:id/speech
func (h *SpeechHandler) QuestionAudio(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	questionID, ok := uuidParam(c, "id", "invalid_question_id")
	if !ok {
		return
	}
	audio, err := h.speech.QuestionAudio(dbcFrom(c), userID, questionID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.Data(http.StatusOK, "audio/mpeg", audio)
}
