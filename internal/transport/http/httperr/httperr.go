// Package httperr maps domain failures to the single wire error shape
// {type, status, messages[]}. The mapping lives here so no handler or gate
// duplicates it, and raw failure detail never reaches a response body.
package httperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

type Response struct {
	Type     string   `json:"type"`
	Status   int      `json:"status"`
	Messages []string `json:"messages"`
}

// From classifies an error into the response taxonomy. Anything it does not
// recognize becomes a ServerError with a generic message.
func From(err error) Response {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed validation on '%s'", fe.Field(), fe.Tag()))
		}
		return Response{Type: "ValidationError", Status: http.StatusBadRequest, Messages: msgs}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidProvider):
		return Response{Type: "ValidationError", Status: http.StatusBadRequest, Messages: []string{err.Error()}}

	case errors.Is(err, domain.ErrDuplicateEmail):
		return Response{Type: "DuplicateEntryError", Status: http.StatusConflict, Messages: []string{err.Error()}}

	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrTokenInvalid):
		return Response{Type: "AuthenticationError", Status: http.StatusUnauthorized, Messages: []string{"Invalid user credentials"}}

	case errors.Is(err, domain.ErrNotVerified), errors.Is(err, domain.ErrNotOwner):
		return Response{Type: "AuthorizationError", Status: http.StatusForbidden, Messages: []string{err.Error()}}

	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return Response{Type: "ResourceNotFoundError", Status: http.StatusNotFound, Messages: []string{"Cannot find the requested resource"}}

	default:
		return Response{Type: "ServerError", Status: http.StatusInternalServerError, Messages: []string{"Something went wrong on the server"}}
	}
}

// Validation wraps a request-binding failure. Binding errors that are not
// validator errors (malformed JSON, wrong types) get a single message.
func Validation(err error) Response {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return From(verrs)
	}
	return Response{Type: "ValidationError", Status: http.StatusBadRequest, Messages: []string{"Request body is missing or malformed"}}
}

// Respond writes the mapped response and logs the underlying error with
// severity scaled to the status.
func Respond(c *gin.Context, logger *slog.Logger, err error) {
	write(c, logger, err, From(err))
}

// RespondValidation writes a binding failure as a ValidationError.
func RespondValidation(c *gin.Context, logger *slog.Logger, err error) {
	write(c, logger, err, Validation(err))
}

// Abort is Respond for middleware: it also short-circuits the chain.
func Abort(c *gin.Context, logger *slog.Logger, err error) {
	Respond(c, logger, err)
	c.Abort()
}

func write(c *gin.Context, logger *slog.Logger, err error, resp Response) {
	log(c, logger, err, resp.Status)
	c.JSON(resp.Status, resp)
}

func log(c *gin.Context, logger *slog.Logger, err error, status int) {
	ctx := c.Request.Context()
	switch {
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		logger.ErrorContext(ctx, "request rejected", "status", status, "error", err)
	default:
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
}
