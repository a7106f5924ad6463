package feed

import (
	"context"

	"sports-edge-lab/internal/domain"
)

// QuoteFeed defines the live market-quote subscription interface.
type QuoteFeed interface {
	// SubscribeQuotes subscribes to quote updates matching the filter.
	SubscribeQuotes(ctx context.Context, filter QuoteFilter) (<-chan domain.MarketQuotePoint, error)

	// Close closes the WebSocket connection.
	Close() error
}

// QuoteFilter defines subscription filter for quote streams.
type QuoteFilter struct {
	// GameIDs restricts the stream to these games. Empty means all games.
	GameIDs []string
}
