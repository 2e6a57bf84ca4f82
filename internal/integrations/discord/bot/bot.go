package bot

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/vnxcius/grumbot/internal/integrations/discord/commands"
)

type Options struct {
	Token    string
	Activity string
	Commands []*discordgo.ApplicationCommand
}

type Bot struct {
	log      *slog.Logger
	session  *discordgo.Session
	activity string
	commands []*discordgo.ApplicationCommand

	synced sync.Once
}

// New prepares the gateway session and wires handler to interactions. The
// connection is made by Open.
func New(log *slog.Logger, opts Options, handler *commands.Handler) (*Bot, error) {
	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		log:      log,
		session:  session,
		activity: opts.Activity,
		commands: opts.Commands,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(handler.OnInteraction)
	return b, nil
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.synced.Do(func() {
		appID := r.User.ID
		if r.Application != nil && r.Application.ID != "" {
			appID = r.Application.ID
		}
		guilds := make([]string, 0, len(r.Guilds))
		for _, g := range r.Guilds {
			guilds = append(guilds, g.ID)
		}
		syncCommands(b.log, s, guildNamer{s}, appID, guilds, b.commands)
	})

	if b.activity != "" {
		if err := s.UpdateGameStatus(0, b.activity); err != nil {
			b.log.Warn("Failed setting activity", "activity", b.activity, "error", err)
		}
	}
	b.log.Info("Ready!", "user", r.User.String())
}

// GuildNamer resolves a guild id to its display name.
type GuildNamer interface {
	GuildName(id string) string
}

type guildNamer struct {
	s *discordgo.Session
}

func (n guildNamer) GuildName(id string) string {
	if g, err := n.s.State.Guild(id); err == nil && g.Name != "" {
		return g.Name
	}
	if g, err := n.s.Guild(id); err == nil {
		return g.Name
	}
	return id
}

// syncCommands publishes cmds globally, then clears each guild's own command
// set so the global /list is the only copy members see.
func syncCommands(log *slog.Logger, reg commands.CommandRegistrar, names GuildNamer, appID string, guildIDs []string, cmds []*discordgo.ApplicationCommand) {
	if err := commands.RegisterSlashCommands(reg, appID, "", cmds); err != nil {
		log.Error("Failed syncing commands", "error", err)
		return
	}

	for _, id := range guildIDs {
		if err := commands.RegisterSlashCommands(reg, appID, id, []*discordgo.ApplicationCommand{}); err != nil {
			log.Error("Failed syncing guild commands", "guild", id, "error", err)
			continue
		}
		log.Info("- " + names.GuildName(id))
	}
}
