// Package enrich orchestrates person resolution across a day of calendar
// events. It classifies every attendee, resolves the external ones in
// parallel with bounded concurrency and records an auditable outcome per
// attendee, so a rendered briefing can say not just who matched what but
// why somebody has no intel attached.
package enrich
