package httpapi

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/auth"
	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/services"
)

const (
	stateCookie    = "roster_oauth_state"
	redirectCookie = "roster_oauth_redirect"
	stateMaxAge    = 10 * 60
)

// resolveRole handles POST /api/auth/role
func (h *Handler) resolveRole(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, services.ErrInvalidEmail.Error())
		return
	}

	res, err := services.ResolveRole(c.Request.Context(), h.store, h.logger, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// login starts the Google sign-in flow
func (h *Handler) login(c *gin.Context) {
	state := uuid.NewString()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateMaxAge, "/auth", "", h.cfg.SecureCookies, true)
	if redirect := safeRedirect(c.Query("redirect")); redirect != "" {
		c.SetCookie(redirectCookie, redirect, stateMaxAge, "/auth", "", h.cfg.SecureCookies, true)
	}

	c.Redirect(http.StatusFound, h.signIn.AuthCodeURL(state))
}

// callback finishes sign-in: verifies state, exchanges the code, checks the
// account is registered and starts a session
func (h *Handler) callback(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		badRequest(c, "invalid sign-in state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/auth", "", h.cfg.SecureCookies, true)

	if msg := c.Query("error"); msg != "" {
		h.redirectToLogin(c, "cancelled")
		return
	}

	email, err := h.signIn.Exchange(ctx, c.Query("code"))
	if err != nil {
		h.logger.Warn("Google sign-in failed", zap.Error(err))
		h.redirectToLogin(c, "signin_failed")
		return
	}

	viewer, err := services.ResolveRole(ctx, h.store, h.logger, email)
	if errors.Is(err, services.ErrUnregistered) {
		h.redirectToLogin(c, "unauthorized")
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.store.TouchAuthUser(ctx, email); err != nil {
		h.writeError(c, err)
		return
	}

	token, sess, err := h.sessions.SignIn(ctx, email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds()), "/", "", h.cfg.SecureCookies, true)

	target := homePath(viewer.Role)
	if redirect, err := c.Cookie(redirectCookie); err == nil {
		if safe := safeRedirect(redirect); safe != "" {
			target = safe
		}
		c.SetCookie(redirectCookie, "", -1, "/auth", "", h.cfg.SecureCookies, true)
	}

	h.logger.Info("Signed in", zap.String("email", email), zap.String("role", string(viewer.Role)))
	c.Redirect(http.StatusFound, h.cfg.PublicBaseURL+target)
}

func (h *Handler) redirectToLogin(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.cfg.PublicBaseURL+"/login?error="+url.QueryEscape(code))
}

// logout ends the current session
func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context(), auth.TokenFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.cfg.SecureCookies, true)
	c.Status(http.StatusNoContent)
}

// session describes the signed-in user
func (h *Handler) session(c *gin.Context) {
	sess, _ := auth.SessionFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"email":      sess.Email,
		"expires_at": sess.ExpiresAt,
		"user":       viewerFrom(c),
	})
}

// events streams session changes as server-sent events until the session ends
func (h *Handler) events(c *gin.Context) {
	ctx := c.Request.Context()
	sess, _ := auth.SessionFrom(c)
	token := auth.TokenFrom(c)

	changes, err := h.sessions.Watch(ctx, sess.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-changes:
			if !ok {
				return false
			}
			if evt.Session == nil {
				// Another session for this email may have ended; only stop
				// when this one is gone
				if _, err := h.sessions.Authenticate(ctx, token); err == nil {
					return true
				}
			}
			c.SSEvent("session", evt)
			return evt.Session != nil
		}
	})
}

// homePath is where each role lands after signing in
func homePath(role model.Role) string {
	if role == model.RoleLeader {
		return "/leader-dashboard"
	}
	return "/participants"
}

// safeRedirect accepts only same-site absolute paths
func safeRedirect(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return ""
	}
	return path
}
