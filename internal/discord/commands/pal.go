// Package commands implements the paldex slash commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/paldex/internal/autocomplete"
	"github.com/MrWong99/paldex/internal/discord"
	"github.com/MrWong99/paldex/internal/format"
	"github.com/MrWong99/paldex/internal/observe"
	"github.com/MrWong99/paldex/internal/pals"
)

// lookupTimeout bounds a Paldeck API call made on behalf of a command.
const lookupTimeout = 10 * time.Second

// autocompleteTimeout bounds a fuzzy name lookup. Discord discards
// autocomplete responses after roughly 3 seconds, so we degrade to an
// empty suggestion list before that.
const autocompleteTimeout = 2500 * time.Millisecond

// maxChoices is the Discord limit on autocomplete choices.
const maxChoices = 25

// PalCommands handles the /pal slash command and its autocomplete.
type PalCommands struct {
	client *pals.Client
	index  *autocomplete.Index
}

// NewPalCommands creates a PalCommands handler backed by the given API
// client and name index.
func NewPalCommands(client *pals.Client, index *autocomplete.Index) *PalCommands {
	return &PalCommands{
		client: client,
		index:  index,
	}
}

// Register registers /pal with the router.
func (pc *PalCommands) Register(router *discord.CommandRouter) {
	router.RegisterCommand("pal", pc.Definition(), pc.handlePal)
	router.RegisterAutocomplete("pal", pc.handleAutocomplete)
}

// Definition returns the /pal ApplicationCommand for Discord registration.
func (pc *PalCommands) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "pal",
		Description: "Look up a Pal in the Paldeck",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         "name",
				Description:  "Pal name",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

// handlePal handles /pal <name>.
func (pc *PalCommands) handlePal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	pc.runPal(ctx, s, i)
}

// runPal performs the Paldeck lookup and replies with an embed. Split from
// handlePal so tests can inject a Responder and context.
func (pc *PalCommands) runPal(ctx context.Context, r discord.Responder, i *discordgo.InteractionCreate) {
	name := stringOption(i, "name")

	ctx, span := observe.StartSpan(ctx, "pal.lookup")
	defer span.End()
	log := observe.Logger(ctx).With("command", "pal", "name", name)

	// The API round trip can exceed Discord's 3 second response window.
	discord.DeferReply(r, i)

	start := time.Now()
	pal, err := pc.client.Get(ctx, name)
	elapsed := time.Since(start)

	if err != nil {
		status := "error"
		switch {
		case errors.Is(err, pals.ErrPalNotFound):
			status = "not_found"
			discord.FollowUp(r, i, fmt.Sprintf("No Pal named %q found. Try the autocomplete suggestions.", name))
		case errors.Is(err, pals.ErrAuthExpired):
			log.Error("paldeck credential expired", "err", err)
			discord.FollowUp(r, i, "The Paldeck API rejected the bot's credentials. Please tell the bot owner.")
		default:
			log.Error("paldeck lookup failed", "err", err)
			discord.FollowUp(r, i, fmt.Sprintf("**Error**: %v", err))
		}
		observe.DefaultMetrics().RecordCommand(ctx, "pal", status)
		return
	}

	observe.DefaultMetrics().RecordCommand(ctx, "pal", "ok")
	log.Info("pal lookup succeeded", "pal_id", pal.ID, "elapsed", elapsed)

	discord.FollowUpEmbed(r, i, buildPalEmbed(pal))
}

// buildPalEmbed renders a Pal record as a Discord embed. Fields with no
// data are omitted.
func buildPalEmbed(pal *pals.Pal) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       pal.Name,
		Description: pal.Description,
		Color:       0x5865F2,
	}
	if pal.ImageWiki != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: pal.ImageWiki}
	}

	if pal.ID != 0 {
		// The API carries the wiki URL for the Pal itself; the computed
		// slug is only a fallback for records missing it.
		wikiURL := pal.Wiki
		if wikiURL == "" {
			wikiURL = format.WikiURL(pal.Name)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Number",
			Value:  fmt.Sprintf("[#%d](%s)", pal.ID, wikiURL),
			Inline: true,
		})
	}

	if len(pal.Types) > 0 {
		links := make([]string, 0, len(pal.Types))
		for _, t := range pal.Types {
			links = append(links, format.WikiLink(t))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   format.TypesLabel(len(pal.Types)),
			Value:  strings.Join(links, ", "),
			Inline: true,
		})
	}

	if pal.Aura.Name != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  format.Title(pal.Aura.Name),
			Value: pal.Aura.Description,
		})
	}

	if len(pal.Suitability) > 0 {
		lines := make([]string, 0, len(pal.Suitability))
		for _, su := range pal.Suitability {
			lines = append(lines, fmt.Sprintf("* %s level %d", format.WikiLink(su.Type), su.Level))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  format.SuitabilityLabel(len(pal.Suitability)),
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(pal.Drops) > 0 {
		lines := make([]string, 0, len(pal.Drops))
		for _, d := range pal.Drops {
			lines = append(lines, "* "+format.WikiLink(d))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Drops",
			Value: strings.Join(lines, "\n"),
		})
	}

	return embed
}

// handleAutocomplete suggests Pal names for the focused "name" option.
func (pc *PalCommands) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()
	pc.runAutocomplete(ctx, s, i)
}

// runAutocomplete performs the fuzzy lookup off the gateway goroutine and
// degrades to an empty suggestion list when it cannot answer in time.
func (pc *PalCommands) runAutocomplete(ctx context.Context, r discord.Responder, i *discordgo.InteractionCreate) {
	partial := focusedStringOption(i)
	log := observe.Logger(ctx).With("command", "pal", "partial", partial)

	start := time.Now()
	resultCh := make(chan []string, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("autocomplete lookup panicked", "panic", rec)
				resultCh <- nil
			}
		}()
		resultCh <- pc.index.Lookup(partial)
	}()

	var names []string
	result := "ok"
	select {
	case names = <-resultCh:
		if len(names) == 0 {
			result = "empty"
		}
	case <-ctx.Done():
		result = "timeout"
		log.Warn("autocomplete lookup timed out")
	}
	observe.DefaultMetrics().RecordAutocomplete(ctx, result, time.Since(start))

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
	discord.RespondChoices(r, i, choices)
}

// stringOption extracts a top-level string option value from an interaction.
func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// focusedStringOption returns the value of the currently focused option.
func focusedStringOption(i *discordgo.InteractionCreate) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Focused {
			return opt.StringValue()
		}
	}
	return ""
}
