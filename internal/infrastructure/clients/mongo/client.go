package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kiezvet/vetdirectory/pkg/config"
	"github.com/kiezvet/vetdirectory/pkg/retry"
)

// Client manages a single shared MongoDB connection. It is constructed
// eagerly and injected, but the dial happens lazily on first use. A
// failed dial leaves the client unset, so the next caller dials again
// instead of replaying a stale error.
type Client struct {
	cfg *config.MongoConfig

	// dialRetry bounds a single dial attempt; tests shrink it
	dialRetry retry.Config

	mu     sync.Mutex
	client *mongo.Client
}

// NewClient creates a new MongoDB connection manager. No I/O happens
// until the first Collection or Ping call.
func NewClient(cfg *config.MongoConfig) *Client {
	return &Client{
		cfg: cfg,
		// Keep the retry window short: the dial happens inside the
		// first request, which should fail fast rather than hang.
		dialRetry: retry.Config{
			MaxAttempts:     3,
			InitialDelay:    200 * time.Millisecond,
			MaxDelay:        2 * time.Second,
			BackoffFactor:   2.0,
			MaxTotalTimeout: 10 * time.Second,
		},
	}
}

// connect returns the shared client, dialing if no dial has succeeded
// yet. The dial runs on its own deadline, detached from the caller's
// context: the connection outlives any single request, so one canceled
// request must not poison it for everyone else.
func (c *Client) connect() (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), c.dialRetry.MaxTotalTimeout)
	defer cancel()

	// mongo.Connect does not dial, so verify reachability with a
	// retried ping before handing the client out.
	err := retry.Do(dialCtx, c.dialRetry, func() error {
		client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(c.cfg.URI))
		if err != nil {
			return err
		}
		if err := client.Ping(dialCtx, nil); err != nil {
			_ = client.Disconnect(dialCtx)
			return err
		}
		c.client = client
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return c.client, nil
}

// Collection returns the listings collection, dialing on first use
func (c *Client) Collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	return client.Database(c.cfg.Database).Collection(c.cfg.Collection), nil
}

// Ping verifies the connection to MongoDB
func (c *Client) Ping(ctx context.Context) error {
	client, err := c.connect()
	if err != nil {
		return err
	}
	return client.Ping(ctx, nil)
}

// Close disconnects the underlying client if it was ever dialed
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
