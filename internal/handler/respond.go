package handler

import (
	"log"
	"net/http"
	"strconv"

	"socialnet/backend/internal/apperr"
	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/follow"
	"socialnet/backend/internal/publication"
	"socialnet/backend/internal/user"

	"github.com/gin-gonic/gin"
)

// region --- Services ---

func followService() *follow.Service {
	return follow.NewService(database.DB)
}

func publicationService() *publication.Service {
	return publication.NewService(database.DB, followService())
}

func userService() *user.Service {
	follows := followService()
	return user.NewService(database.DB, follows, publication.NewService(database.DB, follows))
}

// endregion

// region --- Helpers ---

// respondError writes err using the status code of its kind.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	label := "error"
	if apperr.KindOf(err) == apperr.KindConflict {
		label = "warning"
	}
	c.JSON(status, ErrorResponse{Status: label, Message: apperr.MessageOf(err)})
}

// bindError reports a malformed or invalid request body.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Status: "error", Message: err.Error()})
}

// parseID reads a numeric path parameter; ok is false (and a 400 is written) when it is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Status: "error", Message: "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// targetID reads an optional user id path parameter, defaulting to the viewer.
func targetID(c *gin.Context) (uint, bool) {
	if c.Param("id") == "" {
		return auth.UserID(c), true
	}
	return parseID(c, "id")
}

// endregion
