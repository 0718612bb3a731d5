package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoHealthyEndpoint is returned when no candidate answered a ping.
var ErrNoHealthyEndpoint = errors.New("no healthy RPC endpoint")

// SelectEndpoint pings urls in order and returns a client for the first one
// that answers within perTry. Order is failover order, not latency.
func SelectEndpoint(ctx context.Context, urls []string, perTry time.Duration) (*EVMClient, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrNoHealthyEndpoint)
	}

	var errs []error
	for _, u := range urls {
		c := NewEVMClient(u)
		pctx, cancel := context.WithTimeout(ctx, perTry)
		_, _, err := c.Ping(pctx)
		cancel()
		if err == nil {
			return c, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", Redact(u), err))
	}
	return nil, fmt.Errorf("%w: %w", ErrNoHealthyEndpoint, errors.Join(errs...))
}

// Redact hides the API key segment of keyed provider URLs.
func Redact(url string) string {
	const marker = "/v2/"
	i := strings.Index(url, marker)
	if i < 0 || i+len(marker) == len(url) {
		return url
	}
	return url[:i+len(marker)] + "***"
}
