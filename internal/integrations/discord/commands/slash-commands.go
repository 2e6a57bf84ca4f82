package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/vnxcius/grumbot/internal/listing"
	"github.com/vnxcius/grumbot/internal/servers"
)

const (
	ListCommandName = "list"

	optionServer = "server"
	optionHidden = "hidden"

	// Discord rejects string options with more choices than this.
	maxChoices = 25
)

// ListCommand builds the /list definition, offering names as the server
// choices.
func ListCommand(names []string) *discordgo.ApplicationCommand {
	if len(names) > maxChoices {
		names = names[:maxChoices]
	}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: name,
		})
	}

	return &discordgo.ApplicationCommand{
		Name:        ListCommandName,
		Description: "Lists the active members of a Minecraft server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionServer,
				Description: "Optional. The Minecraft server to check.",
				Choices:     choices,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        optionHidden,
				Description: "Optional. Hide from others in this server.",
			},
		},
		IntegrationTypes: &[]discordgo.ApplicationIntegrationType{
			discordgo.ApplicationIntegrationGuildInstall,
			discordgo.ApplicationIntegrationUserInstall,
		},
		Contexts: &[]discordgo.InteractionContextType{
			discordgo.InteractionContextGuild,
			discordgo.InteractionContextBotDM,
			discordgo.InteractionContextPrivateChannel,
		},
	}
}

// Invocation is a parsed /list interaction.
type Invocation struct {
	Server    string
	Hidden    bool
	ChannelID string
	GuildID   string
	// Guild is the guild's name when known. Empty for direct messages.
	Guild string
	User  string
}

func ParseInvocation(i *discordgo.InteractionCreate) Invocation {
	inv := Invocation{
		Server:    servers.Default,
		Hidden:    true,
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
		Guild:     i.GuildID,
		User:      invoker(i.Interaction),
	}

	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case optionServer:
			if v, ok := opt.Value.(string); ok && v != "" {
				inv.Server = v
			}
		case optionHidden:
			if v, ok := opt.Value.(bool); ok {
				inv.Hidden = v
			}
		}
	}
	return inv
}

func invoker(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.String()
	case i.User != nil:
		return i.User.String()
	default:
		return "unknown"
	}
}

// Responder acknowledges an invocation and delivers its reply.
type Responder interface {
	Defer(hidden bool) error
	Send(content string) error
}

type interactionResponder struct {
	s      *discordgo.Session
	i      *discordgo.Interaction
	hidden bool
}

func (r *interactionResponder) Defer(hidden bool) error {
	r.hidden = hidden
	var flags discordgo.MessageFlags
	if hidden {
		flags = discordgo.MessageFlagsEphemeral
	}
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
}

func (r *interactionResponder) Send(content string) error {
	params := &discordgo.WebhookParams{Content: content}
	if r.hidden {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := r.s.FollowupMessageCreate(r.i, true, params)
	return err
}

type Lister interface {
	List(ctx context.Context, selection, channelID string) listing.Result
}

type Handler struct {
	log      *slog.Logger
	lister   Lister
	reporter listing.Reporter
	timeout  time.Duration
}

// NewHandler returns a /list handler. timeout bounds a whole invocation;
// zero means no bound beyond the fetcher's own timeouts.
func NewHandler(log *slog.Logger, lister Lister, reporter listing.Reporter, timeout time.Duration) *Handler {
	return &Handler{
		log:      log,
		lister:   lister,
		reporter: reporter,
		timeout:  timeout,
	}
}

// Handle runs one /list invocation to completion. Failures never escape;
// the user always gets a reply.
func (h *Handler) Handle(ctx context.Context, inv Invocation, r Responder) {
	h.log.Info("Command used",
		"user", inv.User,
		"command", ListCommandName,
		"server", inv.Server,
		"guild", inv.Guild,
		"guild_id", inv.GuildID,
		"channel", inv.ChannelID,
	)

	deferred := false
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic handling /%s: %v", ListCommandName, rec)
			h.log.Error("Recovered from panic", "error", err)
			if h.reporter != nil {
				h.reporter.Capture(err, map[string]string{"command": ListCommandName, "server": inv.Server})
			}
			if deferred {
				if err := r.Send(listing.ReplyUnexpected); err != nil {
					h.log.Error("Failed sending reply", "error", err)
				}
			}
		}
	}()

	if err := r.Defer(inv.Hidden); err != nil {
		h.log.Error("Failed deferring interaction", "user", inv.User, "error", err)
		return
	}
	deferred = true

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res := h.lister.List(ctx, inv.Server, inv.ChannelID)
	if res.Outcome != listing.Listed {
		h.log.Warn("Command did not list players",
			"user", inv.User,
			"server", inv.Server,
			"outcome", res.Outcome.String(),
			"error", res.Err,
		)
	}

	if err := r.Send(res.Reply); err != nil {
		h.log.Error("Failed sending reply", "user", inv.User, "error", err)
	}
}

// OnInteraction is the discordgo handler for /list.
func (h *Handler) OnInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.ApplicationCommandData().Name != ListCommandName {
		return
	}
	inv := ParseInvocation(i)
	inv.Guild = guildName(s.State, inv.GuildID)
	h.Handle(context.Background(), inv, &interactionResponder{s: s, i: i.Interaction})
}

// guildName looks id up in the gateway cache, falling back to the id itself.
func guildName(state *discordgo.State, id string) string {
	if id == "" || state == nil {
		return id
	}
	if g, err := state.Guild(id); err == nil && g.Name != "" {
		return g.Name
	}
	return id
}

// CommandRegistrar is the part of *discordgo.Session used to sync commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterSlashCommands overwrites the application's commands in guildID, or
// globally when guildID is empty.
func RegisterSlashCommands(s CommandRegistrar, appID, guildID string, cmds []*discordgo.ApplicationCommand) error {
	if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, cmds); err != nil {
		scope := "global"
		if guildID != "" {
			scope = "guild " + guildID
		}
		return fmt.Errorf("sync %s commands: %w", scope, err)
	}
	return nil
}
