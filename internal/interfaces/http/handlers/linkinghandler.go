package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	membershipUsecases "guildpass/internal/application/membership/usecases"
	"guildpass/internal/domain/linking"
	"guildpass/internal/shared/logger"
	"guildpass/internal/shared/utils"
)

// LinkingHandler drives the customer-facing Discord linking flow: the
// emailed URL lands on StartLink, Discord redirects back to Callback.
type LinkingHandler struct {
	oauth      DiscordOAuthService
	stateStore LinkingStateStore
	linkUC     *membershipUsecases.LinkSubscriptionUseCase
	logger     logger.Interface
}

// NewLinkingHandler creates a new LinkingHandler
func NewLinkingHandler(
	oauth DiscordOAuthService,
	stateStore LinkingStateStore,
	linkUC *membershipUsecases.LinkSubscriptionUseCase,
	logger logger.Interface,
) *LinkingHandler {
	return &LinkingHandler{
		oauth:      oauth,
		stateStore: stateStore,
		linkUC:     linkUC,
		logger:     logger,
	}
}

// StartLink begins the OAuth flow for the linking token in the URL.
// GET /link/:token
func (h *LinkingHandler) StartLink(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing linking token")
		return
	}

	state, err := generateState()
	if err != nil {
		h.logger.Errorw("failed to generate oauth state", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to start linking flow")
		return
	}

	authURL, codeVerifier, err := h.oauth.GetAuthURL(state)
	if err != nil {
		h.logger.Errorw("failed to build discord auth url", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to start linking flow")
		return
	}

	if err := h.stateStore.Set(c.Request.Context(), state, token, codeVerifier); err != nil {
		h.logger.Errorw("failed to store oauth state", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to start linking flow")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// LinkResultResponse is the payload returned on a successful link.
type LinkResultResponse struct {
	MemberSID    string              `json:"member_sid"`
	RolesByGuild map[string][]string `json:"roles_by_guild"`
	GuildsJoined []string            `json:"guilds_joined"`
	FailedGuilds []string            `json:"failed_guilds,omitempty"`
}

// Callback finishes the OAuth flow and redeems the linking token.
// GET /link/callback?code=...&state=...
func (h *LinkingHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing code or state")
		return
	}

	info, err := h.stateStore.VerifyAndGet(c.Request.Context(), state)
	if err != nil {
		h.logger.Warnw("oauth state verification failed", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid or expired state")
		return
	}

	accessToken, err := h.oauth.ExchangeCode(c.Request.Context(), code, info.CodeVerifier)
	if err != nil {
		h.logger.Errorw("failed to exchange oauth code", "error", err)
		utils.ErrorResponse(c, http.StatusBadGateway, "discord authorization failed")
		return
	}

	userInfo, err := h.oauth.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		h.logger.Errorw("failed to fetch discord user", "error", err)
		utils.ErrorResponse(c, http.StatusBadGateway, "discord authorization failed")
		return
	}

	result, err := h.linkUC.Execute(c.Request.Context(), info.LinkingToken, userInfo.ID, accessToken)
	if err != nil {
		h.respondLinkError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "account linked", LinkResultResponse{
		MemberSID:    result.MemberSID,
		RolesByGuild: result.DesiredRolesByGuild,
		GuildsJoined: result.GuildsJoined,
		FailedGuilds: result.FailedGuilds,
	})
}

func (h *LinkingHandler) respondLinkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, linking.ErrTokenNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "linking token not found")
	case errors.Is(err, linking.ErrTokenExpired):
		utils.ErrorResponse(c, http.StatusGone, "linking token expired")
	case errors.Is(err, linking.ErrAlreadyLinked):
		utils.ErrorResponse(c, http.StatusConflict, "linking token already used")
	default:
		h.logger.Errorw("linking failed", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to link account")
	}
}

func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
