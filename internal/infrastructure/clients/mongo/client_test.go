package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiezvet/vetdirectory/pkg/config"
	"github.com/kiezvet/vetdirectory/pkg/retry"
)

// unreachableClient points at a port nothing listens on, with the dial
// window shrunk so failures surface quickly.
func unreachableClient() *Client {
	c := NewClient(&config.MongoConfig{
		URI:        "mongodb://127.0.0.1:1",
		Database:   "vet-directory",
		Collection: "vet-places",
	})
	c.dialRetry = retry.Config{
		MaxAttempts:     1,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffFactor:   1.0,
		MaxTotalTimeout: 500 * time.Millisecond,
	}
	return c
}

func TestCollection_FailedDialIsNotCached(t *testing.T) {
	c := unreachableClient()

	_, err := c.Collection(context.Background())
	require.Error(t, err)
	assert.Nil(t, c.client, "a failed dial must leave the client unset")

	// The next call dials again instead of replaying the first error
	_, err = c.Collection(context.Background())
	require.Error(t, err)
	assert.Nil(t, c.client)
}

func TestCollection_CanceledCallerDoesNotPoisonDial(t *testing.T) {
	c := unreachableClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The dial runs on its own deadline; the caller's canceled context
	// must not become the cached state of the connection manager.
	_, err := c.Collection(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)

	_, err = c.Collection(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
}

func TestClose_WithoutDialIsNoOp(t *testing.T) {
	c := unreachableClient()
	assert.NoError(t, c.Close(context.Background()))
}
