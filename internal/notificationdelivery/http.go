// Package notificationdelivery manages delivery layer of notifications.
package notificationdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/internal/middleware"
	"github.com/concierge-bank/backend/pkg/errorspkg"
	"github.com/concierge-bank/backend/pkg/tokenpkg"
	"github.com/concierge-bank/backend/pkg/web"
)

// Service provides service layer interface needed by notification delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package notificationdelivery
type Service interface {
	List(ctx context.Context, username string, pageSize, pageID int32) ([]domain.Notification, error)
}

// Handler facilitates notification delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns notification handler.
func NewHandler(ns Service) *Handler {
	return &Handler{service: ns}
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataNotifications struct {
	Notifications []domain.Notification `json:"notifications"`
}

type response struct {
	Data dataNotifications `json:"data,omitempty"`
}

// List handles http request to list the caller's notifications, most recent first.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	notifications, err := h.service.List(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: dataNotifications{notifications},
	}

	gctx.JSON(http.StatusOK, res)
}
