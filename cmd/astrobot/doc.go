// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Astrobot is a Telegram bot that answers astronomy and astrology questions
with canned text derived from date arithmetic.

# Usage

	$ TG_TOKEN=... astrobot [flags...]

Astrobot replies to the /start, /help, /compatibility, /lunar, /chart and
/news commands, and routes free-form messages by keyword. All calculations
are closed-form approximations (Julian day, season of year, a 29.53-day
lunar cycle); the bot probes which optional astronomy engines are installed
and adapts its replies, but never invokes the engines themselves.

Set NEWS_FEED_URL to an astronomy RSS feed to enable the /news command.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/astrobot/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
