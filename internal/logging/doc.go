// Package logging provides structured logging helpers on top of log/slog.
//
// It defines canonical attribute keys so that log output stays consistent
// across packages, and PII-safety helpers: mailbox addresses are logged as
// stable hashes (AnonymizeEmail, MailboxHash) and token values only as a
// length indicator (SanitizeToken).
package logging
