package spacetraveling

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/logctx"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.Admin.Password)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	logctx.From(c.Request().Context()).Warn("admin_login_failed", slog.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPurge(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Cache.Invalidate(c.Request().Context()); err != nil {
		return err
	}
	logctx.From(c.Request().Context()).Info("cache_purged", slog.String("by", "admin"))
	return a.renderAdminDashboard(c, "Cache purged.")
}

type revalidateRequest struct {
	Secret string `json:"secret"`
}

// handleRevalidate is the content webhook. The CMS posts its configured
// secret in the JSON body whenever content is published.
func (a *App) handleRevalidate(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many attempts"})
	}
	var req revalidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(a.Config.Admin.RevalidateSecret)) != 1 {
		a.loginLimiter.Record(ip)
		logctx.From(c.Request().Context()).Warn("revalidate_rejected", slog.String("ip", ip))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid secret"})
	}
	if err := a.Cache.Invalidate(c.Request().Context()); err != nil {
		return err
	}
	logctx.From(c.Request().Context()).Info("cache_purged", slog.String("by", "webhook"))
	return c.JSON(http.StatusOK, map[string]bool{"revalidated": true})
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	docs, err := a.Store.ListDocuments(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(Dashboard{
		Site:      a.Config.Site,
		Documents: docs,
		PurgedAt:  a.Cache.PurgedAt(),
		Message:   msg,
		CSRFToken: CsrfToken(c),
	}))
}
