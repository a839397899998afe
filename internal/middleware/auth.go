package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eagle-bank/eagle-bank/pkg/tokenpkg"
	"github.com/eagle-bank/eagle-bank/pkg/web"
)

// Keys and types used by the authorization middleware.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

var (
	// ErrAuthHeaderNotFound indicates a missing authorization header.
	ErrAuthHeaderNotFound = errors.New("authorization header is not provided")
	// ErrAuthHeaderInvalid indicates a malformed authorization header.
	ErrAuthHeaderInvalid = errors.New("invalid authorization header format")
)

// AddAuthorization creates an access token and sets the bearer header on the request.
func AddAuthorization(
	request *http.Request,
	tokenMaker tokenpkg.Maker,
	authType string,
	userID string,
	duration time.Duration,
) error {
	token, _, err := tokenMaker.CreateToken(userID, duration)
	if err != nil {
		return err
	}

	request.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware verifies the bearer token and stores its payload in the gin context.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderInvalid))
			return
		}

		authType := strings.ToLower(fields[0])
		if authType != AuthTypeBearer {
			err := fmt.Errorf("unsupported authorization type %s", authType)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		accessToken := fields[1]

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		ctx.Set(AuthPayloadKey, payload)
		ctx.Next()
	}
}
