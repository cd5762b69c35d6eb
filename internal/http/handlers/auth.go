package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizprep-backend/internal/http/response"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

// GET /api/auth/google/login
// Redirects to the provider; ?mode=json returns {"url": ...} instead.
func (ah *AuthHandler) GoogleLogin(c *gin.Context) {
	url, err := ah.authService.LoginURL(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if strings.EqualFold(c.Query("mode"), "json") {
		response.RespondOK(c, gin.H{"url": url})
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GET /api/auth/google/callback?state=...&code=...
func (ah *AuthHandler) GoogleCallback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		response.RespondError(c, http.StatusUnauthorized, "login_denied", nil)
		return
	}
	res, err := ah.authService.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
