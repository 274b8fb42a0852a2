// Package storage provides CSV persistence for the combined event feed.
//
// The combined feed is written to data/events.csv and mirrored to
// public/events.csv, each file replaced atomically. Every source also keeps
// a snapshot of its last successful fetch (events_latino_ch.csv,
// events-bachata-bern.csv) so the feed can be rebuilt without network
// access.
package storage
