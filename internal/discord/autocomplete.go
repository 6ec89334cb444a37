package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const maxAutocompleteChoices = 25

// HandleAutocomplete routes autocomplete interactions to the appropriate handler
func HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case "merchant-buy":
		handleOfferAutocomplete(s, i, client)
	default:
		slog.Warn("Unhandled autocomplete command", "command", data.Name)
	}
}

// handleOfferAutocomplete suggests entries from the current rotation
func handleOfferAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
	focusedValue := getFocusedOptionValue(i.ApplicationCommandData().Options)

	view, err := client.GetRotation()
	if err != nil {
		slog.Error("Failed to get rotation for autocomplete", "error", err)
		respondAutocomplete(s, i, nil)
		return
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	if view.Available {
		for _, entry := range view.Entries {
			display := fmt.Sprintf("%s — %s coins", entry.Item.Label, formatPrice(entry.PriceSnapshot))
			if focusedValue != "" && !strings.Contains(strings.ToLower(display), focusedValue) {
				continue
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  display,
				Value: entry.ID,
			})
			if len(choices) >= maxAutocompleteChoices {
				break
			}
		}
	}

	respondAutocomplete(s, i, choices)
}

func getFocusedOptionValue(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range options {
		if opt.Focused {
			return strings.ToLower(opt.StringValue())
		}
	}
	return ""
}

func respondAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		slog.Error("Failed to respond to autocomplete", "error", err)
	}
}
