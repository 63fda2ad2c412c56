// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package telegram implements the small slice of the Telegram Bot API the
// bot needs: receiving updates over long polling and sending Markdown
// replies.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.astrophena.name/astrobot/internal/request"
	"go.astrophena.name/astrobot/internal/version"
)

const (
	defaultAPI = "https://api.telegram.org"

	maxMessageLen  = 4096 // runes, Bot API limit for a single message
	sendRetryLimit = 5    // N attempts to retry message sending
)

// Config configures a Client.
type Config struct {
	// Token is the Telegram Bot API token.
	Token string
	// APIURL overrides the Bot API base URL. Used in tests.
	APIURL string
	// HTTPClient is the HTTP client to use for making requests.
	HTTPClient *http.Client
	// Scrubber scrubs the token from error messages.
	Scrubber *strings.Replacer
	// Logger is the logger. If nil, slog.Default is used.
	Logger *slog.Logger
}

// Client talks to the Telegram Bot API on behalf of a single bot.
type Client struct {
	token  string
	apiURL string
	httpc  *http.Client

	scrubber *strings.Replacer
	slog     *slog.Logger

	makeRequest func(ctx context.Context, method string, args any) error
	sleep       func(ctx context.Context, d time.Duration) bool
}

// New returns a Client.
func New(cfg Config) *Client {
	c := &Client{
		token:    cfg.Token,
		apiURL:   cfg.APIURL,
		httpc:    cfg.HTTPClient,
		scrubber: cfg.Scrubber,
		slog:     cfg.Logger,
	}
	if c.apiURL == "" {
		c.apiURL = defaultAPI
	}
	if c.httpc == nil {
		c.httpc = request.DefaultClient
	}
	if c.slog == nil {
		c.slog = slog.Default()
	}
	c.makeRequest = c.makeTelegramRequest
	c.sleep = sleep
	return c
}

// Update is an incoming Bot API update. Only the fields the bot consumes
// are mapped.
type Update struct {
	ID      int64    `json:"update_id"`
	Message *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
}

// Chat identifies the chat a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Updates long-polls getUpdates, returning updates with IDs greater or
// equal to offset. The call blocks for up to timeout when no updates are
// pending.
func (c *Client) Updates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	httpc := c.httpc
	if deadline := timeout + 10*time.Second; httpc.Timeout != 0 && httpc.Timeout < deadline {
		// The long poll intentionally outlives the default client timeout.
		clone := *httpc
		clone.Timeout = deadline
		httpc = &clone
	}

	res, err := request.Make[apiResponse[[]Update]](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.apiURL + "/bot" + c.token + "/getUpdates",
		Body: map[string]any{
			"offset":          offset,
			"timeout":         int(timeout.Seconds()),
			"allowed_updates": []string{"message"},
		},
		Headers: map[string]string{
			"User-Agent": version.UserAgent(),
		},
		HTTPClient: httpc,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("getUpdates: %s", res.Description)
	}
	return res.Result, nil
}

type apiResponse[Result any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      Result `json:"result"`
}

type sendMessageArgs struct {
	ChatID             int64  `json:"chat_id"`
	Text               string `json:"text"`
	ParseMode          string `json:"parse_mode,omitempty"`
	LinkPreviewOptions struct {
		IsDisabled bool `json:"is_disabled"`
	} `json:"link_preview_options"`
}

// Send sends a Markdown-formatted message to a chat, splitting it into
// chunks when it exceeds the Bot API message size limit and retrying
// requests when rate limited.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text) {
		args := sendMessageArgs{
			ChatID:    chatID,
			Text:      chunk,
			ParseMode: "Markdown",
		}
		args.LinkPreviewOptions.IsDisabled = true

		var err error
		for i := 0; i < sendRetryLimit; i++ {
			err = c.makeRequest(ctx, "sendMessage", args)
			if err == nil {
				break
			}

			retryable, wait := isRateLimited(err)
			if !retryable {
				break
			}

			c.slog.Warn("sending rate limited, waiting", slog.Int64("chat_id", chatID), slog.Duration("wait", wait))
			if !c.sleep(ctx, wait) {
				return ctx.Err()
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) makeTelegramRequest(ctx context.Context, method string, args any) error {
	_, err := request.Make[request.IgnoreResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.apiURL + "/bot" + c.token + "/" + method,
		Body:   args,
		Headers: map[string]string{
			"User-Agent": version.UserAgent(),
		},
		HTTPClient: c.httpc,
		Scrubber:   c.scrubber,
	})
	return err
}

func splitMessage(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return []string{text}
	}

	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= maxMessageLen {
			chunks = append(chunks, text)
			break
		}

		// Find the last newline (preferred) or whitespace within the limit
		// to avoid splitting mid-word.
		var (
			lastNewline    = -1
			lastWhitespace = -1
			byteCap        = len(text)
			runeCount      int
		)
		for i, r := range text {
			if runeCount == maxMessageLen {
				byteCap = i
				break
			}
			runeCount++

			if r == '\n' {
				lastNewline = i
				continue
			}
			if unicode.IsSpace(r) {
				lastWhitespace = i
			}
		}

		splitAt := byteCap
		switch {
		case lastNewline > 0:
			splitAt = lastNewline
		case lastWhitespace > 0:
			splitAt = lastWhitespace
		}

		chunk := strings.TrimSpace(text[:splitAt])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[splitAt:])
	}

	return chunks
}

func isRateLimited(err error) (bool, time.Duration) {
	var statusErr *request.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		return false, 0
	}

	var errorResponse struct {
		Parameters struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(statusErr.Body, &errorResponse); err != nil {
		return false, 0
	}

	return true, time.Duration(errorResponse.Parameters.RetryAfter) * time.Second
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
