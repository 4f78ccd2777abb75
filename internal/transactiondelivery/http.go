// Package transactiondelivery manages delivery layer of transaction records.
package transactiondelivery

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

// Service provides service layer interface needed by record delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	History(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.TransactionRecord, error)
}

// Handler facilitates transaction record delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction record handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type uriRequest struct {
	AccountID int32 `uri:"id" binding:"required,min=1"`
}

type queryRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataRecords struct {
	Transactions []domain.TransactionRecord `json:"transactions"`
}

type response struct {
	Data dataRecords `json:"data,omitempty"`
}

// History handles http request to list an account's records, most recent first.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
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

	var query queryRequest
	if err := gctx.ShouldBindQuery(&query); err != nil {
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

	records, err := h.service.History(ctx, authPayload.Username, uri.AccountID, query.PageSize, query.PageID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: dataRecords{records},
	}

	gctx.JSON(http.StatusOK, res)
}
