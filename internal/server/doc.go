// Package server holds the optional metrics HTTP server, used when the
// prometheus metrics exporter is selected.
package server
