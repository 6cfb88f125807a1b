package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/http/api"
	"github.com/openkiosk/kioskd/internal/http/api/admin/packets"
	"github.com/openkiosk/kioskd/internal/http/middleware"
	"github.com/openkiosk/kioskd/internal/identity"
)

const oidcStateCookie = "oidc_state"

type OIDCController struct {
	store     db.Store
	provider  *identity.OIDCProvider
	claims    identity.ClaimsConfig
	jwtSecret string
}

// OIDCModule mounts the identity provider login flow. Callback provisioning
// goes through identity.ProvisionUser; the session token it issues is the
// same JWT the password login uses.
func OIDCModule(store db.Store, provider *identity.OIDCProvider, claims identity.ClaimsConfig, jwtSecret string) api.Module {
	ctl := &OIDCController{store: store, provider: provider, claims: claims, jwtSecret: jwtSecret}
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/oidc/login", ctl.login)
		c.Group.GET("/oidc/callback", ctl.callback)
	})
}

func (o *OIDCController) login(ctx *gin.Context) {
	state, err := identity.GenerateState()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not start login"})
		return
	}
	ctx.SetCookie(oidcStateCookie, state, 600, "/", "", false, true)
	ctx.Redirect(http.StatusFound, o.provider.AuthCodeURL(state))
}

func (o *OIDCController) callback(ctx *gin.Context) {
	state, err := ctx.Cookie(oidcStateCookie)
	if err != nil || state == "" || ctx.Query("state") != state {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	ctx.SetCookie(oidcStateCookie, "", -1, "/", "", false, true)

	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	claims, err := o.provider.Exchange(ctx.Request.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("[oidc] code exchange failed")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	user, err := identity.ProvisionUser(ctx.Request.Context(), o.store, claims, o.claims)
	if err != nil {
		log.Error().Err(err).Msg("[oidc] user provisioning failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not provision user"})
		return
	}

	token, err := middleware.GenerateJWT(user.ID, o.jwtSecret)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	ctx.JSON(http.StatusOK, packets.TokenResponse{Token: token})
}
