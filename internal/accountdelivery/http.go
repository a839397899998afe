// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

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

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, name, accountType, ownerID string) (domain.Account, error)
	GetOwned(ctx context.Context, number, requesterID string) (domain.Account, error)
	List(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"account_type" binding:"required,accounttype"`
}

// Create handles http request to create an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	createdAccount, err := h.service.Create(ctx, req.Name, req.Type, authPayload.UserID)
	if err != nil {
		if err == domain.ErrOwnerNotFound {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{createdAccount}})
}

type getRequest struct {
	AccountNumber string `uri:"accountNumber" binding:"required,len=8"`
}

// Get handles http request to get a single owned account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	account, err := h.service.GetOwned(ctx, req.AccountNumber, authPayload.UserID)
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

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list the requester's accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	accounts, err := h.service.List(ctx, authPayload.UserID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}
