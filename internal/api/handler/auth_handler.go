package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/api/metrics"
	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	limiter     ports.LoginLimiter
	log         zerolog.Logger
}

// NewAuthHandler builds the login handler. A nil limiter disables throttling.
func NewAuthHandler(authService ports.AuthService, limiter ports.LoginLimiter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter, log: log}
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	ip := c.RealIP()

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, req.Username, ip)
		if err != nil {
			h.log.Warn().Err(err).Str("username", req.Username).Msg("login limiter unavailable")
		} else if !allowed {
			metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
			h.log.Warn().Str("username", req.Username).Str("ip", ip).Msg("login throttled")
			return domain.ErrRateLimited
		}
	}

	token, claims, err := h.authService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			if h.limiter != nil {
				if lerr := h.limiter.Failure(ctx, req.Username, ip); lerr != nil {
					h.log.Warn().Err(lerr).Str("username", req.Username).Msg("login limiter unavailable")
				}
			}
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	if h.limiter != nil {
		if lerr := h.limiter.Success(ctx, req.Username, ip); lerr != nil {
			h.log.Warn().Err(lerr).Str("username", req.Username).Msg("login limiter unavailable")
		}
	}

	return c.JSON(http.StatusOK, toLoginResponse(token, claims))
}

// Me returns the claims carried by the caller's token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMeResponse(claims))
}
