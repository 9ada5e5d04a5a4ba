package calendar

import (
	"log/slog"
	"sort"
	"strings"
)

// AccessGuard enforces the allowlist of mailboxes that may be queried.
// The allowlist is fixed at construction time; an empty allowlist means
// open-access mode where every mailbox validates.
type AccessGuard struct {
	allowed map[string]struct{}
}

// NewAccessGuard builds a guard from the configured mailbox allowlist.
// Mailboxes are normalized to lowercase. Open-access mode is logged at
// startup so operators can tell it apart from a misconfigured allowlist.
func NewAccessGuard(mailboxes []string, logger *slog.Logger) *AccessGuard {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]struct{}, len(mailboxes))
	for _, m := range mailboxes {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			allowed[m] = struct{}{}
		}
	}

	if len(allowed) == 0 {
		logger.Warn("mailbox allowlist is empty, running in open-access mode")
	} else {
		logger.Info("mailbox allowlist configured", "mailboxes", len(allowed))
	}

	return &AccessGuard{allowed: allowed}
}

// Open reports whether the guard runs in open-access mode.
func (g *AccessGuard) Open() bool {
	return len(g.allowed) == 0
}

// Validate checks the mailbox against the allowlist. It returns an
// *AccessDeniedError when the allowlist is non-empty and does not contain
// the mailbox. Validation happens before any network call.
func (g *AccessGuard) Validate(mailbox string) error {
	if g.Open() {
		return nil
	}
	if _, ok := g.allowed[strings.ToLower(strings.TrimSpace(mailbox))]; ok {
		return nil
	}
	return &AccessDeniedError{Mailbox: mailbox, Allowed: g.Allowed()}
}

// Allowed returns the normalized allowlist in stable order.
func (g *AccessGuard) Allowed() []string {
	out := make([]string, 0, len(g.allowed))
	for m := range g.allowed {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
