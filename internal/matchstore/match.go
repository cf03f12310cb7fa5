// Package matchstore reads and updates match records in the document store.
// The pipeline treats records as read-mostly: the only field it ever mutates
// is the source video locator, and only after a successful publish.
package matchstore

import (
	"context"
	"strings"
)

// Match is the slice of the match document the pipeline consumes. The full
// record carries far more (lineups, tagging state, scores); everything not
// listed here passes through untouched.
type Match struct {
	ID             string `bson:"-"`
	MatchVideo     string `bson:"matchVideo,omitempty"`
	HomeTeamString string `bson:"homeTeamString,omitempty"`
	AwayTeamString string `bson:"awayTeamString,omitempty"`
	Date           string `bson:"date,omitempty"`
	HomeClipped    bool   `bson:"hasHomeBeenClipped,omitempty"`
	AwayClipped    bool   `bson:"hasAwayBeenClipped,omitempty"`
}

// HasSourceVideo reports whether a source locator is recorded for the match.
func (m *Match) HasSourceVideo() bool {
	return m != nil && strings.TrimSpace(m.MatchVideo) != ""
}

// Store is the document store contract the pipeline consumes.
type Store interface {
	// GetMatch resolves a match by identifier. Returns (nil, nil) when no
	// record exists.
	GetMatch(ctx context.Context, id string) (*Match, error)
	// UpdateMatchVideo overwrites the source video locator with the durable
	// address of the published copy.
	UpdateMatchVideo(ctx context.Context, id, url string) error
	// MatchesWithSourceVideo lists matches whose locator is set and does not
	// already point at the given durable host. Used by the backfill command.
	MatchesWithSourceVideo(ctx context.Context, excludeHost string) ([]*Match, error)
}
