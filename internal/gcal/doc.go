// Package gcal provides the Google Calendar implementation of the
// calendar.Provider interface. It is the counterpart to the graph package
// for Workspace-hosted executives, sharing the same retention policy:
// cancelled events, events on other local days, and events the mailbox
// does not participate in are dropped.
package gcal
