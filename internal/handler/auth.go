package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// AuthHandler serves registration, login, token refresh and logout.
type AuthHandler struct {
	Auth      *service.AuthService
	Clients   *service.ClientService
	JWTSecret string
}

// NewAuthHandler wires the sign-in endpoints.
func NewAuthHandler(auth *service.AuthService, clients *service.ClientService, secret string) *AuthHandler {
	return &AuthHandler{Auth: auth, Clients: clients, JWTSecret: secret}
}

type clientReq struct {
	Name                 string `json:"name" form:"name"`
	Email                string `json:"email" form:"email"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
	NationalID           string `json:"national_id" form:"national_id"`
	Country              string `json:"country" form:"country"`
	Gender               string `json:"gender" form:"gender"`
}

func (r clientReq) input(image []byte) service.ClientInput {
	return service.ClientInput{
		Name:                 r.Name,
		Email:                r.Email,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
		NationalID:           r.NationalID,
		Country:              r.Country,
		Gender:               r.Gender,
		Image:                image,
	}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a client account and signs it in straight away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req clientReq
	if err := bind(c, &req); err != nil {
		return err
	}
	image, err := formImage(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	client, err := h.Clients.Register(ctx, req.input(image))
	if err != nil {
		return err
	}
	tokens, err := h.Auth.Login(ctx, service.LoginInput{Email: client.Email, Password: req.Password}, "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"client": client, "tokens": tokens})
}

// Login opens a session.  A caller presenting a still-valid access token
// hands its session slot over to the new principal.
func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	tokens, err := h.Auth.Login(c.Request().Context(), in, h.currentSession(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) currentSession(c echo.Context) string {
	raw, ok := middleware.BearerToken(c)
	if !ok {
		return ""
	}
	claims, err := utils.ParseAccessToken(h.JWTSecret, raw)
	if err != nil {
		return ""
	}
	return claims.SessionID
}

// Refresh handles POST /v1/auth/refresh and rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	tokens, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout ends the session slot before responding.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Auth.Terminate(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me and returns the signed-in actor.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	p, err := h.Auth.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
