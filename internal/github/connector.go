package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/observability"
	"omnirep/internal/storage"
)

// ActivityFetcher fetches activity for a username.
// Implemented by *Client.
type ActivityFetcher interface {
	Activity(ctx context.Context, username string, now time.Time) (domain.GitHubActivity, error)
}

// ConnectorOptions configures a Connector.
type ConnectorOptions struct {
	Fetcher ActivityFetcher
	Store   storage.GitHubConnectionStore
	Logger  *log.Logger
	Now     func() time.Time
}

// Connector links wallets to GitHub accounts.
type Connector struct {
	fetcher ActivityFetcher
	store   storage.GitHubConnectionStore
	logger  *log.Logger
	now     func() time.Time
}

// NewConnector creates a new Connector.
func NewConnector(opts ConnectorOptions) *Connector {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Connector{
		fetcher: opts.Fetcher,
		store:   opts.Store,
		logger:  logger,
		now:     now,
	}
}

// Connect validates username, fetches its activity and stores the link for address.
// A missing account is an error. Any other upstream failure is logged and
// the connection is stored with zero activity.
func (c *Connector) Connect(ctx context.Context, address, username string) (*domain.GitHubConnection, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	now := c.now()
	activity, err := c.fetcher.Activity(ctx, name, now)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Printf("github activity for %s unavailable, using zero activity: %v", name, err)
		activity = domain.GitHubActivity{}
	}

	conn := &domain.GitHubConnection{
		Address:     address,
		Username:    name,
		Activity:    activity,
		Connected:   true,
		LastUpdated: now.UnixMilli(),
	}
	if err := c.store.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("store github connection: %w", err)
	}

	observability.RecordGitHubConnected()
	c.logger.Printf("connected github user %s to %s", name, address)
	return conn, nil
}

// Get returns the stored connection for address.
func (c *Connector) Get(ctx context.Context, address string) (*domain.GitHubConnection, error) {
	return c.store.GetByAddress(ctx, address)
}

// Disconnect removes the stored connection for address.
func (c *Connector) Disconnect(ctx context.Context, address string) error {
	return c.store.Delete(ctx, address)
}
