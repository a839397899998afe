// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/internal/middleware"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
	"github.com/eagle-bank/eagle-bank/pkg/tokenpkg"
	"github.com/eagle-bank/eagle-bank/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, requesterID, number string, arg domain.CreateTransactionParams) (domain.PostTxResult, error)
	List(ctx context.Context, requesterID, number string) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type uriRequest struct {
	AccountNumber string `uri:"accountNumber" binding:"required,len=8"`
}

type createRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Currency  string `json:"currency" binding:"required,currency"`
	Type      string `json:"type" binding:"required,transactiontype"`
	Reference string `json:"reference"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
	Account     domain.Account     `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to post a transaction against an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateTransactionParams{
		Amount:    req.Amount,
		Currency:  req.Currency,
		Type:      req.Type,
		Reference: req.Reference,
	}

	result, err := h.service.Create(ctx, authPayload.UserID, uri.AccountNumber, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrAccountOwnerMismatch:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		case
			domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrInvalidTransactionType,
			domain.ErrCurrencyMismatch:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		case
			domain.ErrInsufficientBalance,
			domain.ErrBalanceCeilingExceeded:
			gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{
		Data: data{
			Transaction: result.Transaction,
			Account:     result.Account,
		},
	})
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list an account's transactions.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.List(ctx, authPayload.UserID, uri.AccountNumber)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrAccountOwnerMismatch:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}
