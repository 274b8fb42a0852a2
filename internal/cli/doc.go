// Package cli implements the command-line interface for latin-events.
//
// The root command crawls every enabled source and publishes the combined
// feed. Subcommands republish from stored snapshots (combine), run the crawl
// on a cron schedule behind an HTTP server (serve) and show how a single
// listing would be classified (classify). Configuration comes from an
// optional YAML file, LATIN_EVENTS_* environment variables and flags, in
// increasing order of precedence.
//
// Exit codes: 0 on success, 1 on error and 3 when a run had nothing to
// publish.
package cli
