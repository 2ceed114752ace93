package intentx

import (
	"fmt"

	"github.com/maachbazar/whatsapp-agent/msgx"
)

// Fixed button ids of the welcome menu
const (
	ActionViewCatalog    = "view_catalog"
	ActionTrackOrder     = "track_order"
	ActionContactSupport = "contact_support"
)

const (
	helpText = "📱 *MaachBazar Help*\n\n" +
		"- Type \"order\" or \"menu\" to browse products\n" +
		"- Type \"status\" or send order number to track\n" +
		"- Type \"location\" to check delivery areas\n" +
		"- Call 1800-123-FISH (3474) for urgent help"

	locationText = "📍 We deliver across Faridabad (Sector 1-89, NIT, Old Faridabad, Ballabgarh). Send your pincode to confirm."

	trackingText = "📦 *Track Your Order*\n\nReply with your order number (e.g. ORD12345) or visit https://maachbazar.in/track\n\n"

	// UnsupportedText answers media, location and other message types
	UnsupportedText = "Sorry, I can only process text messages and button replies right now."

	// FallbackText is sent once when building or sending a reply fails
	FallbackText = "Sorry, an error occurred. Please try again later."
)

// Welcome is the greeting button menu
func Welcome() msgx.Reply {
	return msgx.InteractiveReply{
		Kind: msgx.KindButton,
		Body: "🐟 Welcome to MaachBazar! Fresh fish & poultry delivered to your door. What would you like to do?",
		Buttons: []msgx.Button{
			{ID: ActionViewCatalog, Title: "🛒 View Products"},
			{ID: ActionTrackOrder, Title: "📦 Track Order"},
			{ID: ActionContactSupport, Title: "💬 Support"},
		},
	}
}

// CatalogList renders the catalog as a sectioned list message
func CatalogList(c Catalog) msgx.Reply {
	sections := make([]msgx.Section, 0, len(c))
	for _, cat := range c {
		rows := make([]msgx.Row, 0, len(cat.Products))
		for _, p := range cat.Products {
			rows = append(rows, msgx.Row{ID: p.ID, Title: p.Title, Description: p.Price})
		}
		sections = append(sections, msgx.Section{Title: cat.Title, Rows: rows})
	}
	return msgx.InteractiveReply{
		Kind:       msgx.KindList,
		Header:     "🐟 MaachBazar Catalog",
		Body:       "Choose from our fresh fish, poultry and seafood. Tap a product to see details.",
		Footer:     "Free delivery above ₹500",
		ListButton: "View Products",
		Sections:   sections,
	}
}

// Tracking returns the order tracking instructions, naming orderID when given
func Tracking(orderID string) msgx.Reply {
	body := trackingText
	if orderID != "" {
		body += fmt.Sprintf("Looking up *%s*...", orderID)
	}
	return msgx.TextReply{Body: body}
}

// Help returns the help menu
func Help() msgx.Reply {
	return msgx.TextReply{Body: helpText}
}

// Location returns the delivery area text
func Location() msgx.Reply {
	return msgx.TextReply{Body: locationText}
}

// ProductDetail describes one product with the ordering instruction
func ProductDetail(p Product) msgx.Reply {
	return msgx.TextReply{
		Body: fmt.Sprintf("*%s*\nPrice: %s\n\nTo order reply with:\nORDER %s <quantity>", p.Title, p.Price, p.ID),
	}
}

// Unsupported answers message types the agent cannot read
func Unsupported() msgx.Reply {
	return msgx.TextReply{Body: UnsupportedText}
}

// Fallback is the single apology sent after a failed reply
func Fallback() msgx.Reply {
	return msgx.TextReply{Body: FallbackText}
}
