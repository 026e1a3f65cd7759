package api

import (
	"errors"
	"io"
	"net/http"

	reqdto "tutorlink/internal/handler/dto/request"
	resdto "tutorlink/internal/handler/dto/response"
	"tutorlink/internal/handler/httperr"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/cookie"
	"tutorlink/internal/pkg/jwt"
	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	commands   commands.AuthCommands
	queries    queries.UserQueries
	cookieCfg  config.CookieConfig
	jwtService *jwt.Service
}

func NewAuthHandler(cmds commands.AuthCommands, q queries.UserQueries, cfg config.Config, jwtService *jwt.Service) *AuthHandler {
	return &AuthHandler{
		commands:   cmds,
		queries:    q,
		cookieCfg:  cfg.Cookie,
		jwtService: jwtService,
	}
}

// @Summary Register
// @Description Create a student or tutor account and log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RegisterRequest true "Register request"
// @Success 201 {object} api.Envelope{data=resdto.LoginResponse}
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req reqdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorOrAbort(c, err)
		return
	}

	result, err := h.commands.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.loggedIn(c, http.StatusCreated, "Registration successful", result)
}

// @Summary User login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} api.Envelope{data=resdto.LoginResponse}
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorOrAbort(c, err)
		return
	}

	result, err := h.commands.Login(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.loggedIn(c, http.StatusOK, "Login successful", result)
}

func (h *AuthHandler) loggedIn(c *gin.Context, status int, message string, result *commands.LoginResult) {
	h.setCookies(c, result.TokenPair)

	view, err := h.queries.GetCurrentUser(c.Request.Context(), result.UserID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	user, err := resdto.FromUserView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, status, message, resdto.LoginResponse{
		AccessToken: result.TokenPair.AccessToken,
		User:        user,
	})
}

// @Summary Refresh tokens
// @Description Rotate the token pair using the refresh cookie or body token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RefreshRequest false "Refresh request"
// @Success 200 {object} api.Envelope{data=resdto.RefreshResponse}
// @Failure 401 {object} httperr.Response
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req reqdto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindErrorOrAbort(c, err)
		return
	}
	token := req.RefreshToken
	if token == "" {
		token = cookie.GetRefreshToken(c)
	}
	if token == "" {
		httperr.Abort(c, commands.ErrInvalidToken)
		return
	}

	pair, err := h.commands.RefreshToken(c.Request.Context(), token)
	if err != nil {
		cookie.ClearTokenCookies(c, h.cookieCfg)
		httperr.Abort(c, err)
		return
	}
	h.setCookies(c, pair)
	respond(c, http.StatusOK, "Token refreshed", resdto.RefreshResponse{AccessToken: pair.AccessToken})
}

// @Summary User logout
// @Description Clear the auth cookies. Tokens are stateless and expire on their own.
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} api.Envelope
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie.ClearTokenCookies(c, h.cookieCfg)
	respond(c, http.StatusOK, "Logged out", nil)
}

// @Summary Get current user
// @Description Get current authenticated user information
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} api.Envelope{data=resdto.UserResponse}
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	view, err := h.queries.GetCurrentUser(c.Request.Context(), actor.ID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	user, err := resdto.FromUserView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, http.StatusOK, "Current user", user)
}

func (h *AuthHandler) setCookies(c *gin.Context, pair *commands.TokenPair) {
	cookie.SetTokenCookies(c, h.cookieCfg, cookie.Tokens{
		Access:        pair.AccessToken,
		Refresh:       pair.RefreshToken,
		AccessExpiry:  h.jwtService.AccessTokenDuration(),
		RefreshExpiry: h.jwtService.RefreshTokenDuration(),
	})
}
