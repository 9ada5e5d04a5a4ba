// Package cmd implements the command-line interface for daybrief.
//
// This package provides the following commands:
//   - preview: Fetch one mailbox's calendar day and print the enriched briefing
//   - version: Display version information
package cmd
