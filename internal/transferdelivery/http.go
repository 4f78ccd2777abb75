// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

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

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
}

// Policy decides whether the caller may transfer at all. Blocked users are
// refused here, before the transfer engine is invoked.
type Policy interface {
	TransfersBlocked(ctx context.Context, username string) (bool, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
	policy  Policy
}

// NewHandler returns transfer handler.
func NewHandler(ts Service, policy Policy) *Handler {
	return &Handler{
		service: ts,
		policy:  policy,
	}
}

type request struct {
	FromAccountID int32  `json:"from_account_id" binding:"required,min=1"`
	TransferType  string `json:"transfer_type" binding:"required,oneof=internal external p2p"`
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`

	// internal
	ToAccountID int32 `json:"to_account_id"`

	// external
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	RecipientName string `json:"recipient_name"`

	// p2p
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// params converts the flat wire request into the tagged-variant params; only
// the destination matching transfer_type is carried over, the validator
// rejects requests where it is missing.
func (req request) params() domain.CreateTransferParams {
	arg := domain.CreateTransferParams{
		FromAccountID: req.FromAccountID,
		Type:          domain.TransferType(req.TransferType),
		Amount:        req.Amount,
		Description:   req.Description,
	}

	switch arg.Type {
	case domain.TransferInternal:
		if req.ToAccountID != 0 {
			arg.Internal = &domain.InternalDestination{ToAccountID: req.ToAccountID}
		}
	case domain.TransferExternal:
		if req.RoutingNumber != "" || req.AccountNumber != "" || req.RecipientName != "" {
			arg.External = &domain.ExternalDestination{
				RoutingNumber: req.RoutingNumber,
				AccountNumber: req.AccountNumber,
				RecipientName: req.RecipientName,
			}
		}
	case domain.TransferP2P:
		if req.Email != "" || req.Phone != "" {
			arg.Peer = &domain.PeerDestination{Email: req.Email, Phone: req.Phone}
		}
	}

	return arg
}

type data struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to execute a transfer.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
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

	blocked, err := h.policy.TransfersBlocked(ctx, authPayload.Username)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	if blocked {
		l.Warn().Str("username", authPayload.Username).Msg("transfer refused by policy")
		gctx.JSON(http.StatusForbidden, web.Error(domain.ErrTransfersBlocked))

		return
	}

	result, err := h.service.Transfer(ctx, authPayload.Username, req.params())
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case
			domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrInsufficientBalance,
			domain.ErrCurrencyMismatch,
			domain.ErrSelfTransfer,
			domain.ErrMissingDestination,
			domain.ErrInvalidTransferType,
			domain.ErrInvalidRoutingNumber,
			domain.ErrInvalidAccountNumber,
			domain.ErrInvalidRecipient,
			domain.ErrInvalidPeerContact,
			domain.ErrAccountNotActive:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{result},
	}

	gctx.JSON(http.StatusOK, res)
}
