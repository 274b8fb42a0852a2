// Package scraper provides the source adapters for the upstream dance event listings.
//
// Two adapters are implemented: latino.ch, an HTML listing that is paged by
// replaying its infinite-scroll requests and parsed with goquery, and
// bachata-bern.ch, a WordPress Tribe Events JSON API. Both map listings to
// event records, classify region, styles and labels, keep only dates inside
// the collection window and return their records sorted.
package scraper
