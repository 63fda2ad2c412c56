// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.astrophena.name/astrobot/internal/request"
	"go.astrophena.name/astrobot/internal/testutil"
)

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   string
		want []string
	}{
		"empty":             {in: "   ", want: nil},
		"short":             {in: "hello", want: []string{"hello"}},
		"exact":             {in: strings.Repeat("a", 4096), want: []string{strings.Repeat("a", 4096)}},
		"long (no newline)": {in: strings.Repeat("a", 4100), want: []string{strings.Repeat("a", 4096), "aaaa"}},
		"long (single line with spaces)": {
			in:   strings.Repeat("a", 3000) + " " + strings.Repeat("b", 1500),
			want: []string{strings.Repeat("a", 3000), strings.Repeat("b", 1500)},
		},
		"long (newline split)": {
			in:   strings.Repeat("a", 4000) + "\n" + strings.Repeat("b", 100),
			want: []string{strings.Repeat("a", 4000), strings.Repeat("b", 100)},
		},
		"multi-byte unicode": {
			in:   strings.Repeat("🙂", 4095) + "\n" + "🙂",
			want: []string{strings.Repeat("🙂", 4095), "🙂"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := splitMessage(tc.in)
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestSplitMessageChunksStayUnderCap(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("line\n", 900)
	got := splitMessage(in)
	if len(got) < 2 {
		t.Fatalf("want at least 2 chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if strings.TrimSpace(chunk) == "" {
			t.Fatalf("chunk %d is empty or whitespace only", i)
		}
		if utf8.RuneCountInString(chunk) > maxMessageLen {
			t.Fatalf("chunk %d exceeds rune cap: %d", i, utf8.RuneCountInString(chunk))
		}
	}
}

func TestSendRateLimitRetry(t *testing.T) {
	t.Parallel()

	c := New(Config{Token: "token"})
	var calls int
	c.makeRequest = func(context.Context, string, any) error {
		calls++
		if calls == 1 {
			return &request.StatusError{StatusCode: 429, Body: []byte(`{"parameters":{"retry_after":1}}`)}
		}
		return nil
	}
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return true
	}

	err := c.Send(context.Background(), 1, "hello")
	testutil.AssertEqual(t, err, nil)
	testutil.AssertEqual(t, calls, 2)
	testutil.AssertEqual(t, waits, []time.Duration{time.Second})
}

func TestSendNonRetryableError(t *testing.T) {
	t.Parallel()

	c := New(Config{Token: "token"})
	wantErr := errors.New("boom")
	c.makeRequest = func(context.Context, string, any) error { return wantErr }
	c.sleep = func(context.Context, time.Duration) bool {
		t.Fatal("sleep should not be called for non-retryable errors")
		return false
	}

	if err := c.Send(context.Background(), 1, "hello"); !errors.Is(err, wantErr) {
		t.Fatalf("Send() error = %v, want %v", err, wantErr)
	}
}

func TestSendUsesMarkdown(t *testing.T) {
	t.Parallel()

	c := New(Config{Token: "token"})
	var got sendMessageArgs
	c.makeRequest = func(_ context.Context, method string, args any) error {
		if method != "sendMessage" {
			t.Errorf("method = %q, want sendMessage", method)
		}
		got = args.(sendMessageArgs)
		return nil
	}

	if err := c.Send(context.Background(), 42, "*bold*"); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.ChatID, int64(42))
	testutil.AssertEqual(t, got.Text, "*bold*")
	testutil.AssertEqual(t, got.ParseMode, "Markdown")
}

func TestUpdates(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		args := testutil.UnmarshalJSON[map[string]any](t, b)
		if args["offset"].(float64) != 5 {
			t.Errorf("offset = %v, want 5", args["offset"])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 5,
					"message": map[string]any{
						"text": "/lunar",
						"chat": map[string]any{"id": 100},
					},
				},
			},
		})
	})

	c := New(Config{
		Token:      "token",
		APIURL:     "http://telegram.example.com",
		HTTPClient: testutil.MockHTTPClient(mux),
	})

	updates, err := c.Updates(context.Background(), 5, 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, updates, []Update{
		{
			ID: 5,
			Message: &Message{
				Text: "/lunar",
				Chat: Chat{ID: 100},
			},
		},
	})
}

func TestUpdatesAPIError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": false, "description": "Unauthorized"}`))
	})

	c := New(Config{
		Token:      "token",
		APIURL:     "http://telegram.example.com",
		HTTPClient: testutil.MockHTTPClient(mux),
	})

	_, err := c.Updates(context.Background(), 0, time.Second)
	if err == nil || !strings.Contains(err.Error(), "Unauthorized") {
		t.Fatalf("Updates() error = %v, want it to mention Unauthorized", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err   error
		retry bool
		wait  time.Duration
	}{
		"nil-ish error": {
			err: errors.New("boom"),
		},
		"non-429 status": {
			err: &request.StatusError{StatusCode: 502, Body: []byte("bad gateway")},
		},
		"429 with retry_after": {
			err:   &request.StatusError{StatusCode: 429, Body: []byte(`{"parameters":{"retry_after":7}}`)},
			retry: true,
			wait:  7 * time.Second,
		},
		"429 with garbage body": {
			err: &request.StatusError{StatusCode: 429, Body: []byte("not JSON")},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			retry, wait := isRateLimited(tc.err)
			testutil.AssertEqual(t, retry, tc.retry)
			testutil.AssertEqual(t, wait, tc.wait)
		})
	}
}
