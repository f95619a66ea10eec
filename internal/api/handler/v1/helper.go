package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/sorteos-app/sorteos-api/internal/api/handler/v1/response"
	"github.com/sorteos-app/sorteos-api/internal/api/middleware"
	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/service"
)

var errMissingAuthentication = errors.New("missing authentication")

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	UpdateStatus(ctx context.Context, admin domain.User, userID uint, status domain.UserStatus) error
}

// getUserFromContext loads the user the authentication middleware resolved.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrWrongCredentials(errMissingAuthentication)
	}

	userID, ok := value.(uint)
	if !ok {
		return domain.User{}, response.ErrWrongCredentials(errMissingAuthentication)
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrWrongCredentials(err)
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("v1.getUserFromContext -> svc.GetUser -> %w", err))
	}

	return user, nil
}

// authenticatedUserID returns the middleware-resolved user ID, or zero when
// the request is anonymous.
func authenticatedUserID(ctx *gin.Context) uint {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0
	}

	userID, ok := value.(uint)
	if !ok {
		return 0
	}

	return userID
}
