package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/usecase/shared"

	stream "github.com/GetStream/stream-chat-go/v5"
	"github.com/google/uuid"
)

const channelType = "messaging"

var (
	ErrChatDisabled = errs.Kinded(errs.ErrDependency, "chat is not configured")
	ErrChatRequest  = errs.Kinded(errs.ErrDependency, "chat provider request failed")
)

// StreamProvisioner issues user tokens and creates one messaging channel per
// booking on Stream Chat.
type StreamProvisioner struct {
	cfg    config.ChatConfig
	client *stream.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewStreamProvisioner builds no client while chat is disabled.
func NewStreamProvisioner(cfg config.ChatConfig, logger *slog.Logger) (*StreamProvisioner, error) {
	p := &StreamProvisioner{cfg: cfg, logger: logger, now: time.Now}
	if !cfg.Enabled {
		return p, nil
	}
	client, err := stream.NewClient(cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, errs.Wrap(err, "create chat client")
	}
	client.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	client.HTTP.Timeout = cfg.Timeout
	p.client = client
	return p, nil
}

func (p *StreamProvisioner) UserToken(userID uuid.UUID) (string, time.Time, error) {
	if p.client == nil {
		return "", time.Time{}, ErrChatDisabled
	}
	now := p.now()
	expires := now.Add(p.cfg.TokenTTL).Truncate(time.Second)
	token, err := p.client.CreateToken(userID.String(), expires, now)
	if err != nil {
		return "", time.Time{}, errs.Wrap(err, "sign chat token")
	}
	return token, expires, nil
}

// EnsureChannel upserts the members and creates the booking's channel. An
// existing channel is returned as is by the provider.
func (p *StreamProvisioner) EnsureChannel(ctx context.Context, bookingID uuid.UUID, members []shared.ChatMember) error {
	if p.client == nil || len(members) == 0 {
		return nil
	}

	users := make([]*stream.User, 0, len(members))
	ids := make([]string, 0, len(members))
	for _, m := range members {
		users = append(users, &stream.User{ID: m.ID.String(), Name: m.Name})
		ids = append(ids, m.ID.String())
	}
	if _, err := p.client.UpsertUsers(ctx, users...); err != nil {
		return errs.Mark(errs.Wrap(err, "upsert chat users"), ErrChatRequest)
	}

	channelID := "booking-" + bookingID.String()
	if _, err := p.client.CreateChannelWithMembers(ctx, channelType, channelID, ids[0], ids...); err != nil {
		return errs.Mark(errs.Wrap(err, "create chat channel"), ErrChatRequest)
	}
	p.logger.Debug("chat channel ready", "booking_id", bookingID, "channel_id", channelID)
	return nil
}
