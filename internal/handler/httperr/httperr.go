package httperr

import (
	"net/http"

	"tutorlink/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// Response is the failure envelope.
type Response struct {
	Status  int    `json:"-"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   Body   `json:"error"`
}

type Body struct {
	Code   string `json:"code"`
	Detail any    `json:"detail,omitempty"`
}

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeDependency   = "DEPENDENCY_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// StatusOf maps an error's kind to an HTTP status and error code.
func StatusOf(err error) (int, string) {
	switch errs.KindOf(err) {
	case errs.ErrValidation:
		return http.StatusBadRequest, CodeValidation
	case errs.ErrNotFound:
		return http.StatusNotFound, CodeNotFound
	case errs.ErrForbidden:
		return http.StatusForbidden, CodeForbidden
	case errs.ErrConflict:
		return http.StatusConflict, CodeConflict
	case errs.ErrDependency:
		return http.StatusBadGateway, CodeDependency
	case errs.ErrUnauthenticated:
		return http.StatusUnauthorized, CodeUnauthorized
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Abort responds according to the kind of err. Messages of dependency and
// internal failures are replaced with a generic one.
func Abort(c *gin.Context, err error) {
	status, _ := StatusOf(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "Internal server error"
	case http.StatusBadGateway:
		msg = "An upstream service failed"
	}
	AbortWithError(c, status, err, msg, nil)
}

// AbortWithError preserves the original error on the gin context for logging.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Message: msg}
	resp.Error.Code = codeFor(status)
	resp.Error.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusConflict:
		return CodeConflict
	case http.StatusBadGateway:
		return CodeDependency
	case http.StatusUnauthorized:
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
