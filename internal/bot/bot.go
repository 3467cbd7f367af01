// Package bot provides the Discord transport layer. It owns the
// discordgo.Session lifecycle, turns inbound messages into workflow events,
// and sends the workflow's single reply back to the originating channel.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pkodial/tulubot/internal/workflow"
)

// handleTimeout bounds the processing of one inbound message, covering the
// worst case of a full external fetch.
const handleTimeout = 15 * time.Second

// Config holds Discord bot configuration.
type Config struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`

	// GuildID optionally restricts the bot to one guild. Empty means all
	// guilds the bot is invited to, plus DMs.
	GuildID string `yaml:"guild_id"`
}

// Handler consumes inbound chat events. Satisfied by [workflow.Workflow].
type Handler interface {
	HandleMessage(ctx context.Context, ev workflow.Event, send workflow.ReplyFunc)
}

// ActivityFunc records a liveness timestamp on each handled message.
type ActivityFunc func(at time.Time)

// Bot owns the Discord gateway connection.
type Bot struct {
	mu        sync.RWMutex
	session   *discordgo.Session
	handler   Handler
	guildID   string
	activity  ActivityFunc
	closeOnce sync.Once
}

// New creates a Bot and connects to the Discord gateway. activity may be
// nil.
func New(_ context.Context, cfg Config, handler Handler, activity ActivityFunc) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("bot: create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session:  session,
		handler:  handler,
		guildID:  cfg.GuildID,
		activity: activity,
	}

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessage(s, m)
	})

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("bot: open session: %w", err)
	}
	return b, nil
}

// onMessage converts a gateway message into a workflow event. Messages from
// bots (including our own) and from other guilds are ignored.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if b.guildID != "" && m.GuildID != "" && m.GuildID != b.guildID {
		return
	}

	if b.activity != nil {
		b.activity(time.Now())
	}

	ev := workflow.Event{
		UserID:    m.Author.ID,
		ChatID:    m.ChannelID,
		MessageID: m.ID,
		Text:      m.Content,
		At:        m.Timestamp,
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	b.handler.HandleMessage(ctx, ev, func(text string) error {
		_, err := s.ChannelMessageSend(m.ChannelID, text)
		if err != nil {
			return fmt.Errorf("bot: send reply: %w", err)
		}
		return nil
	})
}

// Session returns the underlying discordgo session, for subsystems that
// need direct API access.
func (b *Bot) Session() *discordgo.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// Run blocks until ctx is cancelled. The gateway connection is already live
// after [New]; Run exists so the bot fits the app's task lifecycle.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("discord bot running")
	<-ctx.Done()
	return ctx.Err()
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	var closeErr error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.session != nil {
			if err := b.session.Close(); err != nil {
				closeErr = fmt.Errorf("bot: close session: %w", err)
			}
		}
		slog.Info("discord bot closed")
	})
	return closeErr
}
