package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
	"github.com/example/reservation-scheduler/internal/logging"
)

var (
	errBadRequestBody   = errors.New("無効なリクエスト形式です。")
	errInvalidQuery     = errors.New("検索条件が正しくありません。")
	errMissingToken     = errors.New("認証トークンを指定してください")
	errInvalidToken     = errors.New("認証トークンが無効です。再度ログインしてください。")
	errForbidden        = errors.New("この操作を実行する権限がありません。")
	errUnexpectedServer = errors.New("サーバー内部でエラーが発生しました。")
)

type responder struct {
	logger *zap.Logger
}

func newResponder(logger *zap.Logger) responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(c *gin.Context, status int, payload any) {
	if status == http.StatusNoContent || payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

func (r responder) writeError(c *gin.Context, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	c.AbortWithStatusJSON(status, errorResponse{Message: message})
}

// writeBindError answers a request whose body or query failed to bind.
// Validator failures become 422 with per-field details; anything else is a
// malformed request.
func (r responder) writeBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = translateValidationTag(fe.Tag())
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "入力内容に誤りがあります。",
			Errors:    details,
		})
		return
	}
	r.loggerFor(c).Debug("failed to bind request", zap.Error(err))
	r.writeError(c, http.StatusBadRequest, errBadRequestBody)
}

func (r responder) handleServiceError(c *gin.Context, err error) {
	if err == nil {
		r.writeError(c, http.StatusInternalServerError, errUnexpectedServer)
		return
	}

	var (
		vErr        *application.ValidationError
		conflictErr *application.ConflictError
	)
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{ErrorCode: "AUTH_FORBIDDEN", Message: errForbidden.Error()})
	case errors.Is(err, application.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "指定されたリソースが見つかりません。"})
	case errors.As(err, &conflictErr):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			ErrorCode: "CONFLICT",
			Message:   "指定された時間帯は既に予約されています。",
			Conflicts: toReservationDTOs(conflictErr.Conflicts),
		})
	case errors.Is(err, application.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{ErrorCode: "CONFLICT", Message: "指定された時間帯は既に予約されています。"})
	case errors.Is(err, application.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{ErrorCode: "INVALID_TRANSITION", Message: "現在の状態ではこの操作を実行できません。"})
	case errors.Is(err, application.ErrImmutableRecord):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{ErrorCode: "IMMUTABLE_RECORD", Message: "終了済みの予約は変更できません。"})
	case errors.Is(err, application.ErrOutsideOperatingHours):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{ErrorCode: "OUTSIDE_OPERATING_HOURS", Message: "営業時間外の予約はできません。"})
	case errors.Is(err, application.ErrInactiveEntity):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{ErrorCode: "INACTIVE_ENTITY", Message: "無効化されたリソースは指定できません。"})
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "入力内容に誤りがあります。",
			Errors:    vErr.FieldErrors,
		})
	default:
		r.loggerFor(c).Error("unexpected service error", zap.Error(err))
		r.writeError(c, http.StatusInternalServerError, errUnexpectedServer)
	}
}

func (r responder) loggerFor(c *gin.Context) *zap.Logger {
	return logging.Or(c.Request.Context(), r.logger)
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusUnauthorized:
		return "認証が必要です。"
	case http.StatusForbidden:
		return "この操作を実行する権限がありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusUnprocessableEntity:
		return "入力内容に誤りがあります。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func translateValidationTag(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "unsupported value"
	case "dive":
		return "invalid item"
	default:
		return "invalid"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflicts []reservationDTO  `json:"conflicts,omitempty"`
}
