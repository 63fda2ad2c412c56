// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.astrophena.name/astrobot/internal/astro"
)

// Reply rendering. Everything is Telegram Markdown and derived from the
// calendar calculator, the capability probe and the clock; nothing here
// performs real ephemeris math.

const (
	errorReply = "Sorry, an error occurred while processing your request. Please try again later."

	timestampFormat = "2006-01-02 15:04:05"
	dateFormat      = "2006-01-02"

	newsItemLimit = 5
)

func (b *bot) startReply() string {
	return strings.TrimSpace(`
🌟 **Welcome to Astronomical Bot!** 🌟

I'm your personal astrology and lunar calendar assistant.

**Available Commands:**
/start - Show this welcome message
/help - Get detailed help
/compatibility - Get detailed compatibility analysis
/lunar - Lunar calendar information
/chart - Basic astrological chart info
/news - Latest astronomy news

Just send me a message or use any command to get started!
`)
}

func (b *bot) helpReply() string {
	var sources strings.Builder
	for _, r := range b.capabilities().Records() {
		mark := "❌"
		if r.Available {
			mark = "✅"
		}
		fmt.Fprintf(&sources, "• %s %s - %s\n", mark, r.Name, r.Description)
	}

	return strings.TrimSpace(fmt.Sprintf(`
🔮 **Astronomical Bot Help** 🔮

**Commands:**
• /start - Welcome message and overview
• /help - This help message
• /compatibility - Detailed compatibility analysis
• /lunar - Current lunar phase and calendar info
• /chart - Basic astrological information
• /news - Latest astronomy news

**How to use:**
1. Use /compatibility to get a comprehensive compatibility summary
2. Use /lunar to see current moon phase and lunar calendar details
3. Use /chart for basic astrological chart information
4. Send any message for general astronomical info

**Optional Data Sources:**
%s
Need specific calculations? Just ask!
`, sources.String()))
}

func (b *bot) compatibilityReply() string {
	var (
		now  = b.now().UTC()
		s    = astro.Take(now)
		caps = b.capabilities()

		sinceEpoch = int(now.Sub(time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	)

	return strings.TrimSpace(fmt.Sprintf(`
🔮 **Detailed Compatibility Summary** 🔮

**System Environment:**
• Platform: %s/%s
• Go Version: %s

**Astronomical Data Sources:**
%s

**Current Astronomical Data:**
• UTC: %s
• Julian Day: %.2f
• Day of Year: %d

**Basic Calculations:**
• Days since Unix Epoch: %d
• Current Season: %s
• Time Zone Offset: UTC (Bot operates in UTC)

%s

**Last Updated:** %s UTC

All systems are operational and ready for astronomical calculations!
`,
		b.verInfo.OS, b.verInfo.Arch, b.verInfo.Go,
		caps.Summary(),
		now.Format(timestampFormat), s.JulianDay, s.DayOfYear,
		sinceEpoch, s.Season,
		caps.Capabilities(),
		now.Format(timestampFormat)))
}

func (b *bot) lunarReply() string {
	var (
		now = b.now().UTC()
		s   = astro.Take(now)
	)

	var engine string
	if b.capabilities().Available("lunarcal") {
		engine = strings.TrimSpace(`
**Lunar Calendar Engine:** Available
• The lunarcal engine is installed
• Precise lunar-solar conversions are possible
`)
	} else {
		engine = strings.TrimSpace(`
**Basic Lunar Information:**
• Lunar phase estimation: Based on mathematical approximation
• For precise lunar calendar data, the lunarcal engine is needed
`)
	}

	return strings.TrimSpace(fmt.Sprintf(`
🌙 **Lunar Calendar Information** 🌙

%s

**Additional Lunar Data:**
• Next New Moon: %s
• Next Full Moon: %s
• Lunar Month Progress: %.1f%%

**Astrological Significance:**
%s
`,
		engine,
		s.NextNewMoon.Format(dateFormat),
		s.NextFullMoon.Format(dateFormat),
		s.LunarProgress,
		significance(s.Phase)))
}

func significance(p astro.Phase) string {
	switch p {
	case astro.New:
		return "🌑 New Moon Phase - Time for new beginnings and setting intentions"
	case astro.Waxing:
		return "🌓 Waxing Phase - Time for growth and building momentum"
	case astro.Full:
		return "🌕 Full Moon Phase - Time for culmination and manifestation"
	}
	return "🌗 Waning Phase - Time for release and letting go"
}

func (b *bot) chartReply() string {
	if b.capabilities().Available("swisseph") {
		return strings.TrimSpace(`
⭐ **Basic Astrological Chart Information** ⭐

**Professional Chart Calculations Available:**
• The swisseph engine is installed and ready
• Planetary positions can be calculated
• House systems supported
• Aspect calculations available

*Provide birth details for personalized chart*
`)
	}
	return strings.TrimSpace(`
⭐ **Basic Astrological Chart Information** ⭐

**Basic Chart Information:**
• Current date and time calculations
• Seasonal information
• Basic astronomical data available

*For professional chart calculations, the swisseph engine is recommended*
`)
}

func (b *bot) fallbackReply() string {
	return strings.TrimSpace(fmt.Sprintf(`
🌟 **Astronomical Information** 🌟

Thanks for your message! I can help you with:

• **Compatibility Analysis** - Use /compatibility
• **Lunar Information** - Use /lunar
• **Astrological Charts** - Use /chart

Current UTC time: %s

What would you like to explore?
`, b.now().UTC().Format(timestampFormat)))
}

func (b *bot) newsReply(ctx context.Context) (string, error) {
	if b.feedURL == "" {
		return "📰 No news feed is configured for this bot.", nil
	}

	feed, err := b.fp.ParseURLWithContext(b.feedURL, ctx)
	if err != nil {
		return "", fmt.Errorf("fetching news feed: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("📰 **" + feed.Title + "**\n")
	for i, item := range feed.Items {
		if i == newsItemLimit {
			break
		}
		fmt.Fprintf(&sb, "\n• [%s](%s)", item.Title, item.Link)
	}
	return sb.String(), nil
}
