// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/internal/middleware"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
	"github.com/eagle-bank/eagle-bank/pkg/tokenpkg"
	"github.com/eagle-bank/eagle-bank/pkg/web"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, arg domain.RegisterUserParams) (domain.User, error)
	Get(ctx context.Context, id, requesterID string) (domain.User, error)
	Update(ctx context.Context, requesterID string, arg domain.PatchUserParams) (domain.User, error)
	Delete(ctx context.Context, id, requesterID string) error
	CheckPassword(ctx context.Context, email, password string) (domain.User, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service       Service
	tokenMaker    tokenpkg.Maker
	tokenDuration time.Duration
}

// NewHandler returns user handler.
func NewHandler(us Service, tokenMaker tokenpkg.Maker, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       us,
		tokenMaker:    tokenMaker,
		tokenDuration: tokenDuration,
	}
}

type data struct {
	User domain.User `json:"user"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Name            string `json:"name" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	AddressLine1    string `json:"address_line1" binding:"required"`
	AddressTown     string `json:"address_town" binding:"required"`
	AddressCounty   string `json:"address_county" binding:"required"`
	AddressPostcode string `json:"address_postcode" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	arg := domain.RegisterUserParams{
		Email:           req.Email,
		Name:            req.Name,
		PhoneNumber:     req.PhoneNumber,
		AddressLine1:    req.AddressLine1,
		AddressTown:     req.AddressTown,
		AddressCounty:   req.AddressCounty,
		AddressPostcode: req.AddressPostcode,
		Password:        req.Password,
	}

	user, err := h.service.Create(ctx, arg)
	if err != nil {
		if err == domain.ErrEmailAlreadyExists {
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{user}})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginData struct {
	AccessToken          string      `json:"access_token"`
	AccessTokenExpiresAt time.Time   `json:"access_token_expires_at"`
	User                 domain.User `json:"user"`
}

type loginResponse struct {
	Data loginData `json:"data,omitempty"`
}

// Login handles http request to authenticate a user and issue an access token.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	user, err := h.service.CheckPassword(ctx, req.Email, req.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	accessToken, payload, err := h.tokenMaker.CreateToken(user.ID, h.tokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, loginResponse{
		Data: loginData{
			AccessToken:          accessToken,
			AccessTokenExpiresAt: payload.ExpiredAt,
			User:                 user,
		},
	})
}

type uriRequest struct {
	ID string `uri:"id" binding:"required"`
}

// Get handles http request to fetch the requester's own user record.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	user, err := h.service.Get(ctx, uri.ID, authPayload.UserID)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrUserAccessDenied:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{user}})
}

type updateRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// Update handles http request to patch the requester's own user record.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.PatchUserParams{
		ID:          uri.ID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	}

	user, err := h.service.Update(ctx, authPayload.UserID, arg)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrUserAccessDenied:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{user}})
}

// Delete handles http request to remove the requester's own user record.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	err := h.service.Delete(ctx, uri.ID, authPayload.UserID)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrUserAccessDenied:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		case domain.ErrUserHasAccounts:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.Status(http.StatusNoContent)
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}
