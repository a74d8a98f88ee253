package server

import (
	"log"
	"net/http"

	apperrors "todoapp/internal/domain/errors"

	"github.com/gin-gonic/gin"
)

// handlerFunc is the result-returning shape every resource handler has.
// Handlers never format error bodies themselves; they return an error
// and wrap produces the single wire response.
type handlerFunc func(ctx *gin.Context) error

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindValidation:   http.StatusBadRequest,
	apperrors.KindInvalidID:    http.StatusBadRequest,
	apperrors.KindDuplicate:    http.StatusBadRequest,
	apperrors.KindNotFound:     http.StatusNotFound,
	apperrors.KindConflict:     http.StatusConflict,
	apperrors.KindUnauthorized: http.StatusUnauthorized,
	apperrors.KindForbidden:    http.StatusForbidden,
	apperrors.KindInternal:     http.StatusInternalServerError,
}

var kindLabel = map[apperrors.Kind]string{
	apperrors.KindValidation:   "Validation Error",
	apperrors.KindInvalidID:    "Invalid ID format",
	apperrors.KindDuplicate:    "Duplicate field value",
	apperrors.KindNotFound:     "Not Found",
	apperrors.KindConflict:     "Conflict",
	apperrors.KindUnauthorized: "Unauthorized",
	apperrors.KindForbidden:    "Forbidden",
	apperrors.KindInternal:     "Internal Server Error",
}

// wrap adapts a handlerFunc to gin. Errors returned by the handler or
// attached to the context are normalized here and written at most once:
// a handler that already produced a response wins.
func wrap(h handlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		err := h(ctx)
		if err == nil && len(ctx.Errors) > 0 {
			err = ctx.Errors.Last().Err
		}
		if err == nil {
			return
		}
		if ctx.Writer.Written() {
			log.Println("[ERROR] Handler failed after writing a response:", err)
			return
		}
		writeError(ctx, err)
	}
}

func writeError(ctx *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	message := err.Error()
	if kind == apperrors.KindInternal {
		// Internals never leak detail beyond the error text; a missing
		// text falls back to a generic message.
		log.Println("[ERROR] Internal server error:", err)
		if message == "" {
			message = "Something went wrong"
		}
	}

	ctx.AbortWithStatusJSON(kindStatus[kind], errorResponse{
		Success: false,
		Error:   kindLabel[kind],
		Message: message,
	})
}
