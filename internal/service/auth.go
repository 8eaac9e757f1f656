package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/session"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// AuthConfig carries the token and hashing parameters.
type AuthConfig struct {
	JWTSecret      string
	AccessTTL      time.Duration
	RefreshTTLDays int
	BcryptCost     int
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Tokens is the pair handed back by login and refresh.
type Tokens struct {
	AccessToken      string         `json:"access_token"`
	AccessExpiresAt  time.Time      `json:"access_expires_at"`
	RefreshToken     string         `json:"refresh_token"`
	RefreshExpiresAt time.Time      `json:"refresh_expires_at"`
	Actor            model.OwnerRef `json:"actor"`
	SessionID        string         `json:"-"`
}

// AuthService opens, refreshes and terminates single-slot sessions.
type AuthService struct {
	accounts Directory
	tokens   TokenStore
	sessions session.Store
	bans     *BanService
	cfg      AuthConfig
	log      *zap.SugaredLogger
	now      Clock
}

// NewAuthService builds the session service.  A nil log or clock gets a default.
func NewAuthService(accounts Directory, tokens TokenStore, sessions session.Store, bans *BanService,
	cfg AuthConfig, log *zap.SugaredLogger, now Clock) *AuthService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{accounts: accounts, tokens: tokens, sessions: sessions, bans: bans, cfg: cfg, log: log, now: now}
}

var errBadCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)

// Login verifies credentials against the store picked by the email
// domain.  When currentSID names a live slot, that slot is handed to the
// new principal and its refresh tokens revoked, so at most one actor is
// ever signed in per session.
func (s *AuthService) Login(ctx context.Context, in LoginInput, currentSID string) (*Tokens, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}
	creds, err := s.accounts.FindCredentials(ctx, model.KindForEmail(in.Email), in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(creds.PasswordHash, in.Password) {
		return nil, errBadCredentials
	}
	ban, err := s.bans.Active(ctx, creds.Ref)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, &BannedError{Ban: *ban}
	}

	sid, err := s.claimSlot(ctx, currentSID, creds.Ref)
	if err != nil {
		return nil, err
	}
	s.log.Infow("login", "actor", creds.Ref.String())
	return s.issue(ctx, creds.Ref, sid)
}

func (s *AuthService) claimSlot(ctx context.Context, currentSID string, ref model.OwnerRef) (string, error) {
	if currentSID != "" {
		if _, err := s.sessions.Get(ctx, currentSID); err == nil {
			if err := s.tokens.RevokeSession(ctx, currentSID); err != nil {
				return "", err
			}
			if err := s.sessions.Replace(ctx, currentSID, ref); err == nil {
				return currentSID, nil
			} else if !errors.Is(err, session.ErrNoSession) {
				return "", err
			}
		}
	}
	return s.sessions.Create(ctx, ref)
}

func (s *AuthService) issue(ctx context.Context, ref model.OwnerRef, sid string) (*Tokens, error) {
	at, err := utils.NewAccessToken(s.cfg.JWTSecret, ref, sid, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	rt, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, model.RefreshToken{
		Owner:     ref,
		SessionID: sid,
		TokenHash: utils.HashRefreshRaw(rt.Raw),
		ExpiresAt: rt.Exp,
	}); err != nil {
		return nil, err
	}
	return &Tokens{
		AccessToken:      at.Token,
		AccessExpiresAt:  at.Exp,
		RefreshToken:     rt.Raw,
		RefreshExpiresAt: rt.Exp,
		Actor:            ref,
		SessionID:        sid,
	}, nil
}

// Refresh rotates a refresh token whose session slot still holds the
// same principal.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Tokens, error) {
	if raw == "" {
		return nil, invalid("refresh_token", "is required")
	}
	hash := utils.HashRefreshRaw(raw)
	tok, err := s.tokens.ValidateRefresh(ctx, hash, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("refresh token: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	current, err := s.sessions.Get(ctx, tok.SessionID)
	if errors.Is(err, session.ErrNoSession) || (err == nil && !current.Is(tok.Owner)) {
		_ = s.tokens.RevokeByHash(ctx, hash)
		return nil, fmt.Errorf("session ended: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if err := s.requireLive(ctx, tok.SessionID, tok.Owner); err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	return s.issue(ctx, tok.Owner, tok.SessionID)
}

// Resolve returns the actor of a session slot, which must match the
// token subject.
func (s *AuthService) Resolve(ctx context.Context, sid string, subject model.OwnerRef) (model.OwnerRef, error) {
	ref, err := s.sessions.Get(ctx, sid)
	if errors.Is(err, session.ErrNoSession) {
		return model.OwnerRef{}, ErrUnauthenticated
	}
	if err != nil {
		return model.OwnerRef{}, err
	}
	if !ref.Is(subject) {
		return model.OwnerRef{}, ErrUnauthenticated
	}
	if err := s.requireLive(ctx, sid, ref); err != nil {
		return model.OwnerRef{}, err
	}
	return ref, nil
}

// requireLive ends the session of a principal that was deleted while
// signed in.
func (s *AuthService) requireLive(ctx context.Context, sid string, ref model.OwnerRef) error {
	live, err := s.accounts.Exists(ctx, ref, false)
	if err != nil {
		return err
	}
	if live {
		return nil
	}
	if err := s.Terminate(ctx, sid); err != nil {
		s.log.Warnw("ending session of removed account", "actor", ref.String(), "error", err)
	}
	return fmt.Errorf("account removed: %w", ErrUnauthenticated)
}

// Terminate empties the slot and revokes its refresh tokens before
// returning.
func (s *AuthService) Terminate(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sid); err != nil {
		return err
	}
	return s.tokens.RevokeSession(ctx, sid)
}

// Me returns the display fields of the signed-in actor.
func (s *AuthService) Me(ctx context.Context, actor model.OwnerRef) (*model.Principal, error) {
	p, err := s.accounts.Principal(ctx, actor)
	if err != nil {
		return nil, storeErr("account", err)
	}
	return p, nil
}
