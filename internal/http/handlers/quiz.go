package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizprep-backend/internal/http/response"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/services"
)

type QuizHandler struct {
	log            *logger.Logger
	quizService    services.QuizService
	maxUploadBytes int64
}

func NewQuizHandler(log *logger.Logger, quizService services.QuizService, maxUploadBytes int64) *QuizHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &QuizHandler{
		log:            log.With("handler", "QuizHandler"),
		quizService:    quizService,
		maxUploadBytes: maxUploadBytes,
	}
}

type questionsBody struct {
	Questions []services.QuestionInput `json:"questions" validate:"required,min=1,max=200,dive"`
}

// readPages collects the "pages" multipart files in upload order.
func (h *QuizHandler) readPages(c *gin.Context) ([]services.PageUpload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return nil, false
	}
	var pages []services.PageUpload
	for _, fh := range form.File["pages"] {
		up, err := readFormFile(fh, h.maxUploadBytes)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_page", err)
			return nil, false
		}
		if !strings.HasPrefix(up.MimeType, "image/") {
			response.RespondError(c, http.StatusBadRequest, "invalid_page", errNoPages)
			return nil, false
		}
		pages = append(pages, services.PageUpload{Data: up.Data, MimeType: up.MimeType, Filename: up.Filename})
	}
	return pages, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// POST /api/quizzes
// multipart: title, type, language, pages[]
// json: { "title", "type", "language", "questions": [...] }
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.CreateQuizInput
	if isMultipart(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes*8)
		pages, ok := h.readPages(c)
		if !ok {
			return
		}
		in = services.CreateQuizInput{
			Title:    formValue(c, "title"),
			Type:     formValue(c, "type"),
			Language: formValue(c, "language"),
			Pages:    pages,
		}
	} else {
		var req struct {
			Title     string                   `json:"title" validate:"max=200"`
			Type      string                   `json:"type"`
			Language  string                   `json:"language"`
			Questions []services.QuestionInput `json:"questions" validate:"required,min=1,max=200,dive"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		if err := validate.Struct(req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in = services.CreateQuizInput{Title: req.Title, Type: req.Type, Language: req.Language, Questions: req.Questions}
	}

	detail, err := h.quizService.CreateQuiz(dbcFrom(c), userID, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, detail)
}

// GET /api/quizzes?type=
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	quizzes, err := h.quizService.ListQuizzes(dbcFrom(c), userID, c.Query("type"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quizzes": quizzes})
}

// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	quizID, ok := uuidParam(c, "id", "invalid_quiz_id")
	if !ok {
		return
	}
	detail, err := h.quizService.GetQuiz(dbcFrom(c), userID, quizID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// POST /api/quizzes/:id/questions
// multipart pages[] or json { "questions": [...] }
func (h *QuizHandler) AppendQuestions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	quizID, ok := uuidParam(c, "id", "invalid_quiz_id")
	if !ok {
		return
	}
	var in services.AppendQuestionsInput
	if isMultipart(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes*8)
		pages, ok := h.readPages(c)
		if !ok {
			return
		}
		in.Pages = pages
	} else {
		var req questionsBody
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		if err := validate.Struct(req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in.Questions = req.Questions
	}

	added, err := h.quizService.AppendQuestions(dbcFrom(c), userID, quizID, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"questions": added})
}
