package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/paldex/internal/autocomplete"
	"github.com/MrWong99/paldex/internal/discord/mock"
	"github.com/MrWong99/paldex/internal/pals"
)

// commandInteraction builds a /pal interaction with the given name option.
func commandInteraction(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "pal",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name:  "name",
						Type:  discordgo.ApplicationCommandOptionString,
						Value: name,
					},
				},
			},
		},
	}
}

// autocompleteInteraction builds a /pal autocomplete interaction with the
// given focused partial value.
func autocompleteInteraction(partial string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommandAutocomplete,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "pal",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name:    "name",
						Type:    discordgo.ApplicationCommandOptionString,
						Value:   partial,
						Focused: true,
					},
				},
			},
		},
	}
}

// newPaldeckServer serves a canned detail response for any ?name= query that
// matches, and an empty envelope otherwise.
func newPaldeckServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") != "Foxparks" {
			w.Write([]byte(`{"content": [], "page": 1, "limit": 1, "count": 0, "total": 0}`))
			return
		}
		w.Write([]byte(`{
			"content": [{
				"id": 12,
				"key": "012",
				"name": "Foxparks",
				"wiki": "https://palworld.fandom.com/wiki/Foxparks",
				"types": ["fire"],
				"imageWiki": "https://example.test/foxparks.png",
				"suitability": [{"type": "kindling", "level": 1}],
				"drops": ["flame organ", "leather"],
				"aura": {"name": "huddle power", "description": "Attack power increases."},
				"description": "A small fire Pal."
			}],
			"page": 1, "limit": 1, "count": 1, "total": 1
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPalDefinition(t *testing.T) {
	t.Parallel()

	pc := NewPalCommands(nil, nil)
	def := pc.Definition()

	if def.Name != "pal" {
		t.Errorf("Name = %q, want %q", def.Name, "pal")
	}
	if len(def.Options) != 1 {
		t.Fatalf("Options count = %d, want 1", len(def.Options))
	}
	opt := def.Options[0]
	if opt.Name != "name" {
		t.Errorf("option name = %q, want %q", opt.Name, "name")
	}
	if opt.Type != discordgo.ApplicationCommandOptionString {
		t.Errorf("option type = %d, want String", opt.Type)
	}
	if !opt.Required {
		t.Error("name option should be required")
	}
	if !opt.Autocomplete {
		t.Error("name option should have autocomplete enabled")
	}
}

func TestRunPal_Success(t *testing.T) {
	t.Parallel()

	srv := newPaldeckServer(t)
	client, err := pals.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	pc := NewPalCommands(client, autocomplete.New([]string{"Foxparks"}))
	m := &mock.InteractionResponder{}

	pc.runPal(context.Background(), m, commandInteraction("Foxparks"))

	if got := len(m.Responses); got != 1 {
		t.Fatalf("responses = %d, want 1 (deferred)", got)
	}
	if m.Responses[0].Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
		t.Errorf("response type = %d, want deferred", m.Responses[0].Type)
	}

	fu := m.LastFollowUp()
	if fu == nil {
		t.Fatal("expected a follow-up message")
	}
	if len(fu.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(fu.Embeds))
	}
	embed := fu.Embeds[0]
	if embed.Title != "Foxparks" {
		t.Errorf("embed title = %q, want %q", embed.Title, "Foxparks")
	}
	if embed.Description != "A small fire Pal." {
		t.Errorf("embed description = %q", embed.Description)
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL != "https://example.test/foxparks.png" {
		t.Errorf("embed thumbnail = %+v", embed.Thumbnail)
	}
}

func TestRunPal_NotFound(t *testing.T) {
	t.Parallel()

	srv := newPaldeckServer(t)
	client, err := pals.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	pc := NewPalCommands(client, autocomplete.New(nil))
	m := &mock.InteractionResponder{}

	pc.runPal(context.Background(), m, commandInteraction("Nopeball"))

	fu := m.LastFollowUp()
	if fu == nil {
		t.Fatal("expected a follow-up message")
	}
	if !strings.Contains(fu.Content, "Nopeball") {
		t.Errorf("follow-up should name the missing Pal, got %q", fu.Content)
	}
	if len(fu.Embeds) != 0 {
		t.Errorf("not-found reply should carry no embed, got %d", len(fu.Embeds))
	}
}

func TestRunPal_AuthExpired(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client, err := pals.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	pc := NewPalCommands(client, autocomplete.New(nil))
	m := &mock.InteractionResponder{}

	pc.runPal(context.Background(), m, commandInteraction("Foxparks"))

	fu := m.LastFollowUp()
	if fu == nil {
		t.Fatal("expected a follow-up message")
	}
	if !strings.Contains(fu.Content, "credentials") {
		t.Errorf("auth failure reply should mention credentials, got %q", fu.Content)
	}
}

// TestBuildPalEmbed_FieldLayout pins the embed field order, labels, and
// link rendering for a fully populated record.
func TestBuildPalEmbed_FieldLayout(t *testing.T) {
	t.Parallel()

	embed := buildPalEmbed(&pals.Pal{
		ID:        12,
		Name:      "Foxparks",
		Wiki:      "https://paldb.cc/en/Foxparks",
		Types:     []string{"fire"},
		ImageWiki: "https://example.test/foxparks.png",
		Suitability: []pals.Suitability{
			{Type: "kindling", Level: 1},
		},
		Drops: []string{"flame organ", "leather"},
		Aura: pals.Aura{
			Name:        "huddle power",
			Description: "Attack power increases.",
		},
		Description: "A small fire Pal.",
	})

	wantNames := []string{"Number", "Type", "Huddle Power", "Work Suitability", "Drops"}
	if len(embed.Fields) != len(wantNames) {
		t.Fatalf("fields = %d, want %d", len(embed.Fields), len(wantNames))
	}
	for i, want := range wantNames {
		if embed.Fields[i].Name != want {
			t.Errorf("field[%d] name = %q, want %q", i, embed.Fields[i].Name, want)
		}
	}

	// The number field must link to the URL the API returned, not a
	// recomputed slug.
	if got := embed.Fields[0].Value; got != "[#12](https://paldb.cc/en/Foxparks)" {
		t.Errorf("number field = %q", got)
	}
	if got := embed.Fields[1].Value; got != "[Fire](https://palworld.fandom.com/wiki/Fire)" {
		t.Errorf("type field = %q", got)
	}
	if got := embed.Fields[3].Value; got != "* [Kindling](https://palworld.fandom.com/wiki/Kindling) level 1" {
		t.Errorf("suitability field = %q", got)
	}
	wantDrops := "* [Flame Organ](https://palworld.fandom.com/wiki/Flame_Organ)\n* [Leather](https://palworld.fandom.com/wiki/Leather)"
	if got := embed.Fields[4].Value; got != wantDrops {
		t.Errorf("drops field = %q", got)
	}
}

// TestBuildPalEmbed_Pluralization verifies the label switch at two types
// and two suitabilities.
func TestBuildPalEmbed_Pluralization(t *testing.T) {
	t.Parallel()

	embed := buildPalEmbed(&pals.Pal{
		ID:    72,
		Name:  "Bushi",
		Types: []string{"fire", "dark"},
		Suitability: []pals.Suitability{
			{Type: "kindling", Level: 2},
			{Type: "handiwork", Level: 1},
		},
	})

	var names []string
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	joined := strings.Join(names, "|")
	if !strings.Contains(joined, "Types") {
		t.Errorf("expected plural Types label, fields: %v", names)
	}
	if !strings.Contains(joined, "Work Suitabilities") {
		t.Errorf("expected plural Work Suitabilities label, fields: %v", names)
	}
}

// TestBuildPalEmbed_SkipsEmptyFields verifies that a sparse record renders
// without empty embed fields.
func TestBuildPalEmbed_SkipsEmptyFields(t *testing.T) {
	t.Parallel()

	embed := buildPalEmbed(&pals.Pal{
		ID:   1,
		Name: "Lamball",
	})

	if embed.Thumbnail != nil {
		t.Errorf("thumbnail should be omitted, got %+v", embed.Thumbnail)
	}
	if len(embed.Fields) != 1 {
		t.Fatalf("fields = %d, want only the number field", len(embed.Fields))
	}
	if embed.Fields[0].Name != "Number" {
		t.Errorf("field[0] = %q, want Number", embed.Fields[0].Name)
	}
	// Without an upstream wiki URL the number link falls back to the
	// computed slug.
	if got := embed.Fields[0].Value; got != "[#1](https://palworld.fandom.com/wiki/Lamball)" {
		t.Errorf("number field = %q", got)
	}
}

func TestRunAutocomplete_Suggests(t *testing.T) {
	t.Parallel()

	index := autocomplete.New([]string{"Lamball", "Lifmunk", "Foxparks"})
	pc := NewPalCommands(nil, index)
	m := &mock.InteractionResponder{}

	pc.runAutocomplete(context.Background(), m, autocompleteInteraction("lam"))

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("expected an autocomplete response")
	}
	if resp.Type != discordgo.InteractionApplicationCommandAutocompleteResult {
		t.Errorf("response type = %d, want autocomplete result", resp.Type)
	}
	if len(resp.Data.Choices) == 0 {
		t.Fatal("expected at least one choice")
	}
	if resp.Data.Choices[0].Name != "Lamball" {
		t.Errorf("first choice = %q, want %q", resp.Data.Choices[0].Name, "Lamball")
	}
}

func TestRunAutocomplete_EmptyIndexDegrades(t *testing.T) {
	t.Parallel()

	pc := NewPalCommands(nil, autocomplete.New(nil))
	m := &mock.InteractionResponder{}

	pc.runAutocomplete(context.Background(), m, autocompleteInteraction("lam"))

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("expected an autocomplete response even with an empty index")
	}
	if len(resp.Data.Choices) != 0 {
		t.Errorf("choices = %d, want 0", len(resp.Data.Choices))
	}
}

func TestRunAutocomplete_TimeoutDegrades(t *testing.T) {
	t.Parallel()

	index := autocomplete.New([]string{"Lamball"})
	pc := NewPalCommands(nil, index)
	m := &mock.InteractionResponder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A cancelled context must still produce a response so Discord does
	// not show a spinner; the choice list may be empty or populated
	// depending on which select arm wins.
	pc.runAutocomplete(ctx, m, autocompleteInteraction("lam"))

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("expected an autocomplete response after timeout")
	}
	if resp.Type != discordgo.InteractionApplicationCommandAutocompleteResult {
		t.Errorf("response type = %d, want autocomplete result", resp.Type)
	}
}

func TestRunAutocomplete_CapsChoices(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, 40)
	for r := 'a'; r < 'a'+40; r++ {
		names = append(names, "Pal"+strings.Repeat(string(r), 3))
	}
	pc := NewPalCommands(nil, autocomplete.New(names))
	m := &mock.InteractionResponder{}

	pc.runAutocomplete(context.Background(), m, autocompleteInteraction(""))

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("expected an autocomplete response")
	}
	if len(resp.Data.Choices) > 25 {
		t.Errorf("choices = %d, want at most 25", len(resp.Data.Choices))
	}
}

func TestHandlePal_ViaRouterTimeout(t *testing.T) {
	t.Parallel()

	// A server that never answers within the client timeout exercises the
	// generic error path end to end.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client, err := pals.New(srv.URL, pals.WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	pc := NewPalCommands(client, autocomplete.New(nil))
	m := &mock.InteractionResponder{}

	pc.runPal(context.Background(), m, commandInteraction("Foxparks"))

	fu := m.LastFollowUp()
	if fu == nil {
		t.Fatal("expected a follow-up message")
	}
	if !strings.Contains(fu.Content, "Error") {
		t.Errorf("generic failure reply should contain Error, got %q", fu.Content)
	}
}
