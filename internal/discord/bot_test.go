package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewCommandRouter(t *testing.T) {
	t.Parallel()

	r := NewCommandRouter()
	if r == nil {
		t.Fatal("NewCommandRouter() returned nil")
	}
	if len(r.commands) != 0 {
		t.Errorf("expected empty commands map, got %d entries", len(r.commands))
	}
	if len(r.autocomplete) != 0 {
		t.Errorf("expected empty autocomplete map, got %d entries", len(r.autocomplete))
	}
}

func TestCommandRouter_ApplicationCommands(t *testing.T) {
	t.Parallel()

	r := NewCommandRouter()

	cmd := &discordgo.ApplicationCommand{Name: "pal"}
	r.RegisterCommand("pal", cmd, func(s *discordgo.Session, i *discordgo.InteractionCreate) {})

	cmds := r.ApplicationCommands()
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].Name != "pal" {
		t.Errorf("expected command name 'pal', got %q", cmds[0].Name)
	}
}

func TestCommandRouter_ApplicationCommands_Dedup(t *testing.T) {
	t.Parallel()

	r := NewCommandRouter()

	cmd := &discordgo.ApplicationCommand{Name: "pal"}
	r.RegisterCommand("pal", cmd, func(s *discordgo.Session, i *discordgo.InteractionCreate) {})
	r.RegisterCommand("pal-alias", cmd, func(s *discordgo.Session, i *discordgo.InteractionCreate) {})

	cmds := r.ApplicationCommands()
	if len(cmds) != 1 {
		t.Fatalf("expected 1 deduplicated command, got %d", len(cmds))
	}
}

func TestCommandRouter_Handle_DispatchesCommand(t *testing.T) {
	t.Parallel()

	r := NewCommandRouter()
	called := false
	r.RegisterCommand("pal", &discordgo.ApplicationCommand{Name: "pal"},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			called = true
		})

	r.Handle(nil, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{Name: "pal"},
		},
	})

	if !called {
		t.Error("command handler was not called")
	}
}

func TestCommandRouter_Handle_DispatchesAutocomplete(t *testing.T) {
	t.Parallel()

	r := NewCommandRouter()
	called := false
	r.RegisterAutocomplete("pal", func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		called = true
	})

	r.Handle(nil, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommandAutocomplete,
			Data: discordgo.ApplicationCommandInteractionData{Name: "pal"},
		},
	})

	if !called {
		t.Error("autocomplete handler was not called")
	}
}
