package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/http/api"
	"github.com/openkiosk/kioskd/internal/http/api/admin/packets"
	"github.com/openkiosk/kioskd/internal/http/middleware"
	"github.com/openkiosk/kioskd/internal/model"
)

type AuthController struct {
	store     db.Store
	jwtSecret string
}

// AuthPublicModule mounts the unauthenticated login endpoint.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := &AuthController{store: store, jwtSecret: jwtSecret}
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.POST("/auth/login", api.ResolveEndpoint(ctl.login))
	})
}

// AuthSessionModule mounts session endpoints that require a valid token.
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := &AuthController{store: store, jwtSecret: jwtSecret}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", ctl.currentProfile)
	})
}

func (a *AuthController) login(ctx *gin.Context) (any, *api.APIError) {
	var req packets.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	user, err := a.store.GetUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		log.Warn().Str("email", req.Email).Msg("[auth] failed login attempt")
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	token, err := middleware.GenerateJWT(user.ID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not issue token"}
	}
	return packets.TokenResponse{Token: token}, nil
}

func (a *AuthController) currentProfile(_ *gin.Context, user *model.User) (any, *api.APIError) {
	return packets.ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		Permissions: user.Permissions,
	}, nil
}
