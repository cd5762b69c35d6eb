package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/quizprep-backend/internal/http/response"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/language"
)

const defaultMaxUploadBytes = 20 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// requireUser returns the authenticated user id, answering 401 when the
// request carries none.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, fmt.Errorf("%s is not a valid id", name))
		return uuid.Nil, false
	}
	return id, true
}

func dbcFrom(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// requestLanguage is the explicit language if given, else the best
// Accept-Language match. It returns "" when neither says anything useful.
func requestLanguage(c *gin.Context, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if code, ok := language.Normalize(explicit); ok {
			return code
		}
	}
	if h := strings.TrimSpace(c.GetHeader("Accept-Language")); h != "" {
		return language.FromAcceptLanguage(h)
	}
	return ""
}

type upload struct {
	Data     []byte
	MimeType string
	Filename string
}

func readFormFile(fh *multipart.FileHeader, maxBytes int64) (upload, error) {
	f, err := fh.Open()
	if err != nil {
		return upload{}, err
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return upload{}, err
	}
	if int64(len(raw)) > maxBytes {
		return upload{}, errFileTooLarge
	}
	mimeType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(raw)
	}
	return upload{Data: raw, MimeType: mimeType, Filename: fh.Filename}, nil
}

func formValue(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}
