// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"strings"
	"time"

	"go.astrophena.name/astrobot/internal/capability"
	"go.astrophena.name/astrobot/internal/cli"
	"go.astrophena.name/astrobot/internal/logger"
	"go.astrophena.name/astrobot/internal/request"
	"go.astrophena.name/astrobot/internal/telegram"
	"go.astrophena.name/astrobot/internal/util/syncx"
	"go.astrophena.name/astrobot/internal/version"

	"github.com/mmcdole/gofeed"
)

func main() { cli.Main(new(bot)) }

const (
	defaultPollTimeout = 30 * time.Second
	fetchFailureDelay  = 5 * time.Second
)

var errNoToken = errors.New("TG_TOKEN environment variable is not set")

type bot struct {
	pollTimeout time.Duration

	// configuration, read-only after Run starts
	tgToken string
	feedURL string

	tg      tgClient
	fp      *gofeed.Parser
	httpc   *http.Client
	logf    logger.Logf
	now     func() time.Time
	verInfo version.Info

	probeSources []capability.Source // overridden in tests
	caps         syncx.Lazy[capability.Set]

	noPoll bool // used in tests
}

// tgClient is the slice of [telegram.Client] the bot consumes.
type tgClient interface {
	Updates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	Send(ctx context.Context, chatID int64, text string) error
}

func (b *bot) Flags(fs *flag.FlagSet) {
	fs.DurationVar(&b.pollTimeout, "poll-timeout", defaultPollTimeout, "Telegram long polling `timeout`.")
}

func (b *bot) Run(ctx context.Context, env *cli.Env) error {
	if b.tgToken == "" {
		b.tgToken = env.Getenv("TG_TOKEN")
	}
	if b.tgToken == "" {
		return errNoToken
	}
	if b.feedURL == "" {
		b.feedURL = env.Getenv("NEWS_FEED_URL")
	}

	b.logf = env.Logf
	if b.now == nil {
		b.now = time.Now
	}
	if b.pollTimeout == 0 {
		b.pollTimeout = defaultPollTimeout
	}
	if b.verInfo == (version.Info{}) {
		b.verInfo = version.Version()
	}
	if b.httpc == nil {
		b.httpc = request.DefaultClient
	}
	if b.tg == nil {
		b.tg = telegram.New(telegram.Config{
			Token:      b.tgToken,
			HTTPClient: b.httpc,
			Scrubber:   strings.NewReplacer(b.tgToken, "[EXPUNGED]"),
		})
	}
	if b.fp == nil {
		b.fp = gofeed.NewParser()
		b.fp.Client = b.httpc
	}

	caps := b.capabilities()
	var avail int
	for _, r := range caps.Records() {
		if r.Available {
			avail++
		}
	}
	b.logf("Starting astrobot: %d of %d optional sources available.", avail, len(caps.Records()))

	if b.noPoll {
		return nil
	}
	return b.poll(ctx)
}

// capabilities returns the probe result, probing on first use. Sources are
// never re-probed within the process lifetime.
func (b *bot) capabilities() capability.Set {
	return b.caps.Get(func() capability.Set {
		if b.probeSources != nil {
			return capability.ProbeSources(b.probeSources)
		}
		return capability.Probe()
	})
}

func (b *bot) poll(ctx context.Context) error {
	var offset int64
	for {
		updates, err := b.tg.Updates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logf("Failed to fetch updates: %v", err)
			if !sleep(ctx, fetchFailureDelay) {
				return nil
			}
			continue
		}

		for _, upd := range updates {
			if upd.ID >= offset {
				offset = upd.ID + 1
			}
			msg := upd.Message
			if msg == nil || strings.TrimSpace(msg.Text) == "" {
				continue
			}
			if err := b.handle(ctx, msg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				b.logf("Failed to handle message: %v", err)
				if err := b.tg.Send(ctx, msg.Chat.ID, errorReply); err != nil {
					b.logf("Failed to send error reply: %v", err)
				}
			}
		}
	}
}

func (b *bot) handle(ctx context.Context, msg *telegram.Message) error {
	text := strings.TrimSpace(msg.Text)

	var cmd string
	if strings.HasPrefix(text, "/") {
		cmd = text
		if i := strings.IndexAny(cmd, " \n"); i != -1 {
			cmd = cmd[:i]
		}
		// Commands can be addressed to the bot directly: /lunar@astrobot.
		if i := strings.Index(cmd, "@"); i != -1 {
			cmd = cmd[:i]
		}
		cmd = strings.ToLower(cmd)
	}

	var (
		reply string
		err   error
	)
	switch cmd {
	case "/start":
		reply = b.startReply()
	case "/help":
		reply = b.helpReply()
	case "/compatibility":
		reply = b.compatibilityReply()
	case "/lunar":
		reply = b.lunarReply()
	case "/chart":
		reply = b.chartReply()
	case "/news":
		reply, err = b.newsReply(ctx)
		if err != nil {
			return err
		}
	default:
		reply = b.routeText(text)
	}

	return b.tg.Send(ctx, msg.Chat.ID, reply)
}

// routeText picks a reply for a free-form message by keyword.
func (b *bot) routeText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "compatibility", "match", "relationship"):
		return b.compatibilityReply()
	case containsAny(lower, "moon", "lunar", "phase"):
		return b.lunarReply()
	case containsAny(lower, "chart", "horoscope", "astrology"):
		return b.chartReply()
	}
	return b.fallbackReply()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
