package api

import (
	"net/http"

	resdto "tutorlink/internal/handler/dto/response"
	"tutorlink/internal/handler/httperr"
	"tutorlink/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	cmds commands.ChatCommands
}

func NewChatHandler(cmds commands.ChatCommands) *ChatHandler {
	return &ChatHandler{cmds: cmds}
}

// @Summary Chat token
// @Description Issue a token for the chat client
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Envelope{data=resdto.ChatTokenResponse}
// @Failure 401 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/chat/token [get]
func (h *ChatHandler) Token(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	token, err := h.cmds.IssueToken(c.Request.Context(), actor)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, http.StatusOK, "Chat token", resdto.FromChatToken(token))
}
