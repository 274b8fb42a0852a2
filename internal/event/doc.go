// Package event provides the record type of the combined dance event feed.
//
// Source adapters turn their raw listings into a Draft and call New, which
// cleans the text fields and derives the region, the normalized labels and
// the detected dance styles exactly once. Records are not mutated after
// construction. The package also owns the ISO date helpers and the feed sort
// order shared by the adapters and the aggregator.
package event
