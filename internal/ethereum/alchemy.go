package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"omnirep/internal/observability"
)

// DefaultAlchemyURL is the mainnet NFT API endpoint. The API key is a path segment.
const DefaultAlchemyURL = "https://eth-mainnet.g.alchemy.com/nft/v2"

// AlchemyClient counts wallet NFTs through the Alchemy NFT API.
type AlchemyClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// AlchemyOption configures AlchemyClient.
type AlchemyOption func(*AlchemyClient)

// WithAlchemyURL overrides the API endpoint.
func WithAlchemyURL(u string) AlchemyOption {
	return func(c *AlchemyClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithAlchemyHTTPClient sets custom http.Client.
func WithAlchemyHTTPClient(client *http.Client) AlchemyOption {
	return func(c *AlchemyClient) {
		c.client = client
	}
}

// NewAlchemyClient creates a new Alchemy NFT client.
func NewAlchemyClient(apiKey string, opts ...AlchemyOption) *AlchemyClient {
	c := &AlchemyClient{
		baseURL: DefaultAlchemyURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type getNFTsResponse struct {
	TotalCount int `json:"totalCount"`
}

// NFTCount returns the number of NFTs owned by address. A missing
// totalCount reads as zero.
func (c *AlchemyClient) NFTCount(ctx context.Context, address string) (n int, err error) {
	defer func(start time.Time) {
		observability.RecordUpstreamCall("alchemy", "getNFTs", time.Since(start).Seconds(), err)
	}(time.Now())

	q := url.Values{}
	q.Set("owner", address)
	q.Set("withMetadata", "false")
	endpoint := c.baseURL + "/" + url.PathEscape(c.apiKey) + "/getNFTs?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var r getNFTsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	return r.TotalCount, nil
}
