package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// MerchantCommand shows the current merchant offering
func MerchantCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "merchant",
		Description: "See what the traveling merchant has for sale",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		view, err := client.GetRotation()
		if err != nil {
			slog.Error("Failed to fetch rotation", "error", err)
			respondFriendlyError(s, i, err)
			return
		}

		if !view.Available || len(view.Entries) == 0 {
			sendEmbed(s, i, createEmbed("🏪 Traveling Merchant", MsgNothingForSale, ColorMerchant))
			return
		}

		var sb strings.Builder
		for _, entry := range view.Entries {
			label := entry.Item.Label
			if entry.Item.Special != "" {
				label = fmt.Sprintf("%s (%s)", label, entry.Item.Special)
			}
			fmt.Fprintf(&sb, "`#%d` **%s** — %s coins\n", entry.ID, label, formatPrice(entry.PriceSnapshot))
		}
		fmt.Fprintf(&sb, "\nStock refreshes %s. Use `/merchant-buy` to purchase.", relativeTimestamp(view.Rotation.EndsAt))

		sendEmbed(s, i, createEmbed("🏪 Traveling Merchant", sb.String(), ColorMerchant))
	}

	return cmd, handler
}

// MerchantBuyCommand purchases an entry from the current offering
func MerchantBuyCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "merchant-buy",
		Description: "Buy an item from the traveling merchant",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionInteger,
				Name:         "offer",
				Description:  "The offer to buy",
				Required:     true,
				Autocomplete: true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		if user == nil {
			respondError(s, i, MsgServerError)
			return
		}

		options := getOptions(i)
		if len(options) == 0 {
			respondError(s, i, MsgItemGone)
			return
		}
		entryID := options[0].IntValue()

		result, err := client.Buy(user.ID, entryID, i.GuildID)
		if err != nil {
			slog.Error("Purchase failed", "error", err, "user", user.ID, "entry_id", entryID)
			respondFriendlyError(s, i, err)
			return
		}

		desc := fmt.Sprintf("You bought **%s** for %s coins.\nNew balance: %s coins.",
			result.ItemLabel, formatPrice(result.PricePaid), formatPrice(result.NewBalance))
		sendEmbed(s, i, createEmbed("💰 Purchase Complete", desc, ColorSuccess))
	}

	return cmd, handler
}
