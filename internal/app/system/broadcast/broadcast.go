// Package broadcast fans an organizer's message out to volunteers through
// several sending accounts. Recipients are split into BCC batches and the
// batches rotate across accounts so no single mailbox hits its send quota.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/dalemusser/shiftboard/internal/app/system/htmlsanitize"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"golang.org/x/sync/errgroup"
)

// MinAccounts is the number of sending accounts broadcast requires.
const MinAccounts = 3

// DefaultBatchSize is the BCC batch size.
const DefaultBatchSize = 25

// maxParallel bounds concurrent SMTP sessions.
const maxParallel = 6

var ErrNotEnoughAccounts = fmt.Errorf("broadcast requires %d sending accounts to be configured", MinAccounts)

// ErrNoRecipients is returned when the filtered recipient list is empty.
var ErrNoRecipients = errors.New("no volunteers with an email address match this selection")

// Sender is one sending account.
type Sender interface {
	Send(ctx context.Context, e mailer.Email) error
	Address() string
}

// Account is one "user:pass" entry from configuration.
type Account struct {
	User string
	Pass string
}

// ParseAccounts parses "a@x:pw1,b@x:pw2". Blank entries are skipped.
func ParseAccounts(s string) ([]Account, error) {
	var out []Account
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		user, pass, ok := strings.Cut(part, ":")
		user, pass = strings.TrimSpace(user), strings.TrimSpace(pass)
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("broadcast account %q must be user:pass", user)
		}
		out = append(out, Account{User: user, Pass: pass})
	}
	return out, nil
}

// Plan splits recipients into batches of size (DefaultBatchSize when size < 1).
// Addresses are trimmed, lower-cased and de-duplicated; order is kept.
func Plan(recipients []string, size int) [][]string {
	if size < 1 {
		size = DefaultBatchSize
	}
	seen := make(map[string]struct{}, len(recipients))
	clean := make([]string, 0, len(recipients))
	for _, r := range recipients {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		clean = append(clean, r)
	}

	var batches [][]string
	for i := 0; i < len(clean); i += size {
		end := i + size
		if end > len(clean) {
			end = len(clean)
		}
		batches = append(batches, clean[i:end])
	}
	return batches
}

// Message is what the organizer composed.
type Message struct {
	Subject string
	Body    string // plain text; newlines become <br> in the HTML part
	// ReplyToAccount is 1-based; out-of-range falls back to the first account.
	ReplyToAccount int
}

// Result summarizes a dispatch.
type Result struct {
	Batches int
	Sent    int
	Failed  int
	Errors  []string
}

// Dispatch sends msg to recipients. Batch i goes through senders[i%len].
// Each batch is addressed To the sending account with the recipients in BCC.
// Batches run in parallel; a failing batch does not stop the others.
func Dispatch(ctx context.Context, senders []Sender, msg Message, recipients []string, batchSize int) (Result, error) {
	if len(senders) < MinAccounts {
		return Result{}, ErrNotEnoughAccounts
	}
	batches := Plan(recipients, batchSize)
	if len(batches) == 0 {
		return Result{}, ErrNoRecipients
	}

	replyTo := senders[0].Address()
	if i := msg.ReplyToAccount - 1; i >= 0 && i < len(senders) {
		replyTo = senders[i].Address()
	}
	htmlBody := RenderHTML(msg.Body)

	res := Result{Batches: len(batches)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, batch := range batches {
		s := senders[i%len(senders)]
		g.Go(func() error {
			err := s.Send(gctx, mailer.Email{
				To:       []string{s.Address()},
				Bcc:      batch,
				ReplyTo:  replyTo,
				Subject:  msg.Subject,
				TextBody: msg.Body,
				HTMLBody: htmlBody,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed += len(batch)
				res.Errors = append(res.Errors, fmt.Sprintf("batch %d via %s: %v", i+1, s.Address(), err))
				return nil
			}
			res.Sent += len(batch)
			return nil
		})
	}
	_ = g.Wait()

	if res.Sent == 0 {
		return res, errors.New("broadcast failed: no batches were delivered")
	}
	return res, nil
}

// RenderHTML escapes body, turns newlines into <br> and wraps it in the
// broadcast container, then runs it through the strict sanitizer.
func RenderHTML(body string) string {
	escaped := html.EscapeString(body)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return `<div style="font-family: sans-serif; line-height: 1.6; color: #333;">` +
		htmlsanitize.Email(escaped) + `</div>`
}
