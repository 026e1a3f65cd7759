package commands

import (
	"context"
	"time"

	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

type ChatToken struct {
	UserID    uuid.UUID
	Token     string
	APIKey    string
	ExpiresAt time.Time
}

type ChatCommands interface {
	IssueToken(ctx context.Context, actor shared.Actor) (*ChatToken, error)
}

type chatCommandsImpl struct {
	chat   shared.ChatProvisioner
	apiKey string
}

func NewChatCommands(chat shared.ChatProvisioner, apiKey string) ChatCommands {
	return &chatCommandsImpl{chat: chat, apiKey: apiKey}
}

func (uc *chatCommandsImpl) IssueToken(_ context.Context, actor shared.Actor) (*ChatToken, error) {
	token, expires, err := uc.chat.UserToken(actor.ID)
	if err != nil {
		return nil, err
	}
	return &ChatToken{
		UserID:    actor.ID,
		Token:     token,
		APIKey:    uc.apiKey,
		ExpiresAt: expires,
	}, nil
}
