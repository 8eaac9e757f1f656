package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BanNoticePath is where banned browser clients are redirected.
const BanNoticePath = "/v1/ban-notice"

// BanChecker returns the active ban of a principal, or nil.
type BanChecker interface {
	Active(ctx context.Context, ref model.OwnerRef) (*model.Ban, error)
}

// SessionTerminator ends a session slot.
type SessionTerminator interface {
	Terminate(ctx context.Context, sid string) error
}

// BanRecorder observes enforced bans.
type BanRecorder interface {
	BanEnforced(kind model.ActorKind)
}

// BanGateConfig wires the ban gate.  Recorder and Log may be nil.
type BanGateConfig struct {
	Bans      BanChecker
	Sessions  SessionTerminator
	Recorder  BanRecorder
	Countdown int
	Log       *zap.SugaredLogger
}

// BanNoticeURL builds the notice link carrying the ban message.
func BanNoticeURL(message string, countdown int) string {
	q := url.Values{}
	q.Set("message", message)
	q.Set("next", "/login")
	q.Set("countdown", strconv.Itoa(countdown))
	return BanNoticePath + "?" + q.Encode()
}

// BanGate ends the session of any non-admin actor under an active ban
// before the handler runs.  The slot is destroyed and refresh tokens
// revoked synchronously, then the caller receives the ban notice.
func BanGate(cfg BanGateConfig) echo.MiddlewareFunc {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := Actor(c)
			if !ok || actor.Kind == model.KindAdmin {
				return next(c)
			}
			ctx := c.Request().Context()
			ban, err := cfg.Bans.Active(ctx, actor)
			if err != nil {
				return err
			}
			if ban == nil {
				return next(c)
			}
			if err := cfg.Sessions.Terminate(ctx, SessionID(c)); err != nil {
				return err
			}
			clearIdentity(c)
			if cfg.Recorder != nil {
				cfg.Recorder.BanEnforced(actor.Kind)
			}
			log.Infow("banned actor signed out", "actor", actor.String(), "ban_id", ban.ID)

			msg := ban.Message()
			notice := BanNoticeURL(msg, cfg.Countdown)
			if wantsHTML(c.Request()) {
				return c.Redirect(http.StatusSeeOther, notice)
			}
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":             "banned",
				"message":           msg,
				"redirect_to":       notice,
				"countdown_seconds": cfg.Countdown,
			})
		}
	}
}

// wantsHTML is true for browser navigations: HTML accepted, JSON not.
func wantsHTML(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get(echo.HeaderAccept))
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "json")
}
