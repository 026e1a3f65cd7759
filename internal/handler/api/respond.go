package api

import (
	"net/http"

	"tutorlink/internal/handler/httperr"
	"tutorlink/internal/handler/middleware"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errUnauthenticated = errs.Kinded(errs.ErrUnauthenticated, "Unauthorized")
	errInvalidID       = errs.Kinded(errs.ErrValidation, "Invalid id")
)

// Envelope is the success body of every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func actorOrAbort(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return shared.Actor{}, false
	}
	return actor, true
}

func idParamOrAbort(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errInvalidID), "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func bindErrorOrAbort(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", err.Error())
}
