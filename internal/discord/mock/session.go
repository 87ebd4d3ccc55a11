// Package mock provides test doubles for Discord interaction handling.
package mock

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// InteractionResponder records interaction responses and follow-ups instead
// of calling the Discord API. It satisfies discord.Responder.
type InteractionResponder struct {
	mu sync.Mutex

	// Responses holds every interaction response sent, in order.
	Responses []*discordgo.InteractionResponse
	// FollowUps holds every follow-up message sent, in order.
	FollowUps []*discordgo.WebhookParams

	// RespondErr is returned from InteractionRespond when set.
	RespondErr error
	// FollowUpErr is returned from FollowupMessageCreate when set.
	FollowUpErr error
}

func (m *InteractionResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RespondErr != nil {
		return m.RespondErr
	}
	m.Responses = append(m.Responses, resp)
	return nil
}

func (m *InteractionResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, params *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FollowUpErr != nil {
		return nil, m.FollowUpErr
	}
	m.FollowUps = append(m.FollowUps, params)
	return &discordgo.Message{}, nil
}

// LastResponse returns the most recent interaction response, or nil.
func (m *InteractionResponder) LastResponse() *discordgo.InteractionResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) == 0 {
		return nil
	}
	return m.Responses[len(m.Responses)-1]
}

// LastFollowUp returns the most recent follow-up message, or nil.
func (m *InteractionResponder) LastFollowUp() *discordgo.WebhookParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.FollowUps) == 0 {
		return nil
	}
	return m.FollowUps[len(m.FollowUps)-1]
}

// Reset clears all recorded responses and follow-ups.
func (m *InteractionResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = nil
	m.FollowUps = nil
}
