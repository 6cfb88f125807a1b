package endpoints

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/http/api"
	"github.com/openkiosk/kioskd/internal/playlist"
)

//go:embed player.html
var playerPage []byte

type PlayerController struct {
	resolver *playlist.Resolver
}

// PlayerModule mounts the unauthenticated kiosk endpoints: the polling API
// and the player page shell.
func PlayerModule(resolver *playlist.Resolver) api.Module {
	ctl := &PlayerController{resolver: resolver}
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/api/playlist", ctl.getPlaylist)
		c.Group.GET("/play", ctl.playPage)
	})
}

// getPlaylist serves the polling endpoint. Malformed input yields a plain
// text 400 without touching storage; storage failures yield a 500.
func (p *PlayerController) getPlaylist(ctx *gin.Context) {
	rawID := ctx.Query("browser_id")
	if rawID == "" {
		ctx.String(http.StatusBadRequest, "Missing 'browser_id' parameter.")
		return
	}

	resp, err := p.resolver.Resolve(ctx.Request.Context(), rawID, requestBaseURL(ctx))
	if errors.Is(err, playlist.ErrInvalidBrowserID) {
		ctx.String(http.StatusBadRequest, "Invalid 'browser_id' format. Must be a UUID.")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("[player] playlist resolution failed")
		ctx.String(http.StatusInternalServerError, "internal error")
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// playPage serves the static player shell. The COOP header lets the player
// open login popups that can message back to the opener.
func (p *PlayerController) playPage(ctx *gin.Context) {
	ctx.Header("Cross-Origin-Opener-Policy", "same-origin-allow-popups")
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", playerPage)
}

// requestBaseURL reconstructs scheme://host of the incoming request so
// relative media references resolve to absolute URLs.
func requestBaseURL(ctx *gin.Context) string {
	scheme := "http"
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if ctx.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request.Host
}
