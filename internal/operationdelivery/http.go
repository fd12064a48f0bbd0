// Package operationdelivery manages delivery layer of account operations.
package operationdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/bankapp/account-core/internal/middleware"
	"github.com/bankapp/account-core/pkg/errorspkg"
	"github.com/bankapp/account-core/pkg/tokenpkg"
	"github.com/bankapp/account-core/pkg/web"
)

// Service provides service layer interface needed by operation delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package operationdelivery
type Service interface {
	Inquire(ctx context.Context, actorID int64, ref domain.AccountRef, originIP string) (domain.AccountSnapshot, error)
	Deposit(ctx context.Context, actorID int64, ref domain.AccountRef, amount, originIP string) (domain.TransactionReceipt, error)
	Withdraw(ctx context.Context, actorID int64, ref domain.AccountRef, amount, originIP string) (domain.TransactionReceipt, error)
}

// Handler facilitates operation delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns operation handler.
func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type snapshotData struct {
	Account domain.AccountSnapshot `json:"account"`
}

type receiptData struct {
	Transaction domain.TransactionReceipt `json:"transaction"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type accountURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

func actorFrom(gctx *gin.Context) int64 {
	payload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	return payload.UserID
}

// writeError maps domain sentinels to HTTP status codes. Unclassified
// errors surface as a generic internal failure without detail.
func writeError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrInvalidInput:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrAccountNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrUnauthorizedAccess:
		gctx.JSON(http.StatusUnauthorized, web.Error(err))
	case domain.ErrAccountNotActive:
		gctx.JSON(http.StatusForbidden, web.Error(err))
	case domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func bindAccountURI(gctx *gin.Context) (domain.AccountRef, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return domain.AccountRef{}, false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return domain.AccountRef{}, false
	}

	return domain.ByID(uri.ID), true
}

func bindAmount(gctx *gin.Context) (string, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return "", false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return "", false
	}

	return req.Amount, true
}

// Inquire handles http request to view the balance of the caller's account.
func (h *Handler) Inquire(gctx *gin.Context) {
	h.inquire(gctx, domain.ByOwner())
}

// InquireAccount handles http request to view the balance of an explicit account.
func (h *Handler) InquireAccount(gctx *gin.Context) {
	ref, ok := bindAccountURI(gctx)
	if !ok {
		return
	}

	h.inquire(gctx, ref)
}

func (h *Handler) inquire(gctx *gin.Context, ref domain.AccountRef) {
	ctx := gctx.Request.Context()

	snapshot, err := h.service.Inquire(ctx, actorFrom(gctx), ref, gctx.ClientIP())
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: snapshotData{snapshot}})
}

// Deposit handles http request to deposit into the caller's account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.deposit(gctx, domain.ByOwner())
}

// DepositAccount handles http request to deposit into an explicit account.
func (h *Handler) DepositAccount(gctx *gin.Context) {
	ref, ok := bindAccountURI(gctx)
	if !ok {
		return
	}

	h.deposit(gctx, ref)
}

func (h *Handler) deposit(gctx *gin.Context, ref domain.AccountRef) {
	ctx := gctx.Request.Context()

	amount, ok := bindAmount(gctx)
	if !ok {
		return
	}

	receipt, err := h.service.Deposit(ctx, actorFrom(gctx), ref, amount, gctx.ClientIP())
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: receiptData{receipt}})
}

// Withdraw handles http request to withdraw from the caller's account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.withdraw(gctx, domain.ByOwner())
}

// WithdrawAccount handles http request to withdraw from an explicit account.
func (h *Handler) WithdrawAccount(gctx *gin.Context) {
	ref, ok := bindAccountURI(gctx)
	if !ok {
		return
	}

	h.withdraw(gctx, ref)
}

func (h *Handler) withdraw(gctx *gin.Context, ref domain.AccountRef) {
	ctx := gctx.Request.Context()

	amount, ok := bindAmount(gctx)
	if !ok {
		return
	}

	receipt, err := h.service.Withdraw(ctx, actorFrom(gctx), ref, amount, gctx.ClientIP())
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: receiptData{receipt}})
}
