// Package valkey wraps valkey-go behind the small surface the service
// needs: prefixed keys, the inbound dedup fast path, pub/sub fan-out for
// the admin websocket and health probing. Valkey is always optional; every
// consumer must keep working with a nil *Client.
package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

const connectTimeout = 5 * time.Second

// Config carries the connection settings from core/config.
type Config struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// Client is the shared connection handle. Create it once in cmd wiring and
// pass it down as a dependency.
type Client struct {
	inner  valkeylib.Client
	prefix string
}

// NewClient connects and verifies the connection with a bounded ping so a
// down cache fails fast at startup instead of hanging the process.
func NewClient(cfg Config) (*Client, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey at %s: %w", cfg.Address, err)
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &Client{inner: inner, prefix: prefix}, nil
}

// Inner exposes the raw valkey-go client for command builders the wrapper
// does not cover (pub/sub receive, snapshot writes).
func (c *Client) Inner() valkeylib.Client { return c.inner }

// Close releases the connection.
func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key joins parts under the configured prefix:
// Key("dedup", "default", "tg", "42") -> "leadgate:dedup:default:tg:42".
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.prefix, ":")
	}
	return c.prefix + strings.Join(parts, ":")
}

// MarkOnce is the dedup fast path: SET NX with a TTL. It reports whether
// the key already existed. The relational dedup table stays the source of
// truth; this only spares it a round trip for hot duplicates.
func (c *Client) MarkOnce(ctx context.Context, key string, ttl time.Duration) (seen bool, err error) {
	cmd := c.inner.B().Set().Key(key).Value("1").Nx().Ex(ttl).Build()
	res := c.inner.Do(ctx, cmd)
	if err := res.Error(); err != nil {
		if IsNil(err) {
			// NX on an existing key answers with nil.
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// DeleteByPrefix removes every key under prefix via SCAN. Used when a
// chat reset has to drop its dedup marks together with the table rows.
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		res := c.inner.Do(ctx, c.inner.B().Scan().Cursor(cursor).Match(prefix+":*").Count(200).Build())
		entry, err := res.AsScanEntry()
		if err != nil {
			return err
		}
		if len(entry.Elements) > 0 {
			if err := c.inner.Do(ctx, c.inner.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return err
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Publish sends a payload on a channel for cross-process fan-out.
func (c *Client) Publish(ctx context.Context, channel, payload string) error {
	return c.inner.Do(ctx, c.inner.B().Publish().Channel(channel).Message(payload).Build()).Error()
}

// Ping checks the connection; the caller controls the timeout via ctx.
func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// IsConnected is a health probe with a short internal timeout.
func (c *Client) IsConnected() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.Ping(ctx) == nil
}

// IsNil reports whether err is the valkey NIL response.
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}
