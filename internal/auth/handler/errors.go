package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsdevtools/client1/internal/logger"
)

var errNoResult = errors.New("provider returned empty result")

// serverError handles truly unexpected failures: full detail is logged,
// the response carries detail only in development.
func (h *Handler) serverError(c *gin.Context, err error) {
	logger.Error("login surface error", map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})

	detail := ""
	if h.dev {
		detail = err.Error()
	}

	h.renderError(c, http.StatusInternalServerError,
		"Something went wrong",
		"The sign-in service hit an unexpected error. Please try again.",
		&detail)
}

func (h *Handler) renderError(c *gin.Context, status int, title, message string, detail *string) {
	data := gin.H{
		"Title":   title,
		"Message": message,
	}
	if detail != nil && *detail != "" {
		data["Detail"] = *detail
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := pageTemplates.ExecuteTemplate(c.Writer, "error", data); err != nil {
		logger.Error("error page render failed", map[string]any{
			"error": err.Error(),
		})
	}
	c.Abort()
}
