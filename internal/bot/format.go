package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/dedent"

	"github.com/JamesLuiz/House-me/internal/listings"
)

const (
	listingTitleMaxLen = 30
	descriptionMaxLen  = 500
)

func formatReplyText(text string, a ...any) string {
	if len(a) == 0 {
		return strings.TrimSpace(dedent.Dedent(text))
	}
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func pluralize(singular string, plural string, count int) string {
	var s string
	if count == 1 {
		s = singular
	} else {
		s = plural
	}
	return fmt.Sprintf("%d %s", count, s)
}

func pluralizeProperties(count int) string {
	return pluralize("property", "properties", count)
}

// formatPrice renders an amount in naira with thousands separators.
func formatPrice(price float64) string {
	return "₦" + humanize.Comma(int64(math.Round(price)))
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func listingURL(webAppURL, id string) string {
	return fmt.Sprintf("%s/house/%s", strings.TrimRight(webAppURL, "/"), id)
}

// whatsAppURL builds a wa.me link from a phone number, keeping only digits.
func whatsAppURL(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits
}

func formatListingDetail(l *listings.Listing, id, webAppURL string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🏠 %s\n\n", boldMarkdown(orDefault(l.Title, "Property Details")))
	fmt.Fprintf(&sb, "💰 *Price:* %s\n", formatPrice(l.Price))
	fmt.Fprintf(&sb, "📍 *Location:* %s\n", escapeMarkdown(orDefault(l.Location, MsgNotAvailable)))
	fmt.Fprintf(&sb, "🏘️ *Type:* %s\n", escapeMarkdown(capitalize(orDefault(l.Type, MsgNotAvailable))))
	if l.Bedrooms > 0 {
		fmt.Fprintf(&sb, "🛏️ *Bedrooms:* %d\n", l.Bedrooms)
	}
	if l.Bathrooms > 0 {
		fmt.Fprintf(&sb, "🚿 *Bathrooms:* %d\n", l.Bathrooms)
	}
	if l.Area > 0 {
		fmt.Fprintf(&sb, "📐 *Area:* %s sqm\n", strconv.FormatFloat(l.Area, 'f', -1, 64))
	}
	description := truncate(orDefault(l.Description, MsgListingNoDesc), descriptionMaxLen)
	fmt.Fprintf(&sb, "\n📝 *Description:*\n%s\n", escapeMarkdown(description))
	if l.Agent != nil {
		fmt.Fprintf(&sb, "\n👤 *Agent:* %s", escapeMarkdown(orDefault(l.Agent.Name, MsgNotAvailable)))
		if l.Agent.Verified {
			sb.WriteString(" ✅ Verified")
		}
	}
	fmt.Fprintf(&sb, "\n\n🔗 View on website: %s", listingURL(webAppURL, id))

	return sb.String()
}

func formatAgentContact(agent *listings.Agent, id, webAppURL string) string {
	var sb strings.Builder

	sb.WriteString("💬 *Contact Agent*\n\n")
	fmt.Fprintf(&sb, "👤 *Agent:* %s\n", escapeMarkdown(orDefault(agent.Name, MsgNotAvailable)))
	if agent.Phone != "" {
		fmt.Fprintf(&sb, "📱 *Phone:* %s\n", escapeMarkdown(agent.Phone))
	}
	if agent.Email != "" {
		fmt.Fprintf(&sb, "📧 *Email:* %s\n", escapeMarkdown(agent.Email))
	}
	fmt.Fprintf(&sb, "\n🔗 *View Property:*\n%s\n\n", listingURL(webAppURL, id))
	sb.WriteString("💬 *Need Help?*\nContact our support: " + SupportPhone)

	return sb.String()
}
