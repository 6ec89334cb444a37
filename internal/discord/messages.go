package discord

// User-facing messages
const (
	MsgMerchantClosed    = "🏪 The merchant is away right now. Check back later!"
	MsgItemGone          = "❌ That offer is no longer on the table."
	MsgOnCooldown        = "⏳ You just bought something from the merchant."
	MsgInsufficientFunds = "💸 You don't have enough coins for that."
	MsgPlayerNotFound    = "❌ You don't have a balance yet. Play a bit first!"
	MsgServerError       = "Error connecting to game server."
	MsgNothingForSale    = "The merchant has nothing for sale."
)

// Embed colors
const (
	ColorMerchant = 0x9b59b6
	ColorSuccess  = 0x2ecc71
)

// FooterMerchant is the standard footer for merchant embeds
const FooterMerchant = "Traveling Merchant"
