package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"omnirep/internal/observability"
)

// Etherscan defaults.
const (
	DefaultEtherscanURL = "https://api.etherscan.io/v2/api"
	DefaultChainID      = "1"
	MaxTxListOffset     = 10000

	noTransactionsMessage = "No transactions found"
)

// ErrEtherscan is returned when Etherscan answers with status "0" for a
// reason other than an empty history.
var ErrEtherscan = errors.New("etherscan api error")

// TxStats summarizes a wallet's transaction list.
type TxStats struct {
	Count  int
	Volume decimal.Decimal // ETH, sum of tx values
}

// EtherscanClient reads account history from the Etherscan v2 API.
type EtherscanClient struct {
	baseURL string
	chainID string
	apiKey  string
	client  *http.Client
}

// EtherscanOption configures EtherscanClient.
type EtherscanOption func(*EtherscanClient)

// WithEtherscanURL overrides the API endpoint.
func WithEtherscanURL(u string) EtherscanOption {
	return func(c *EtherscanClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithChainID selects the chain queried through the v2 API.
func WithChainID(id string) EtherscanOption {
	return func(c *EtherscanClient) {
		c.chainID = id
	}
}

// WithEtherscanHTTPClient sets custom http.Client.
func WithEtherscanHTTPClient(client *http.Client) EtherscanOption {
	return func(c *EtherscanClient) {
		c.client = client
	}
}

// NewEtherscanClient creates a new Etherscan client.
func NewEtherscanClient(apiKey string, opts ...EtherscanOption) *EtherscanClient {
	c := &EtherscanClient{
		baseURL: DefaultEtherscanURL,
		chainID: DefaultChainID,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanTx struct {
	TimeStamp string `json:"timeStamp"`
	Value     string `json:"value"` // wei
}

// TxStats returns the count and total value of up to MaxTxListOffset transactions.
func (c *EtherscanClient) TxStats(ctx context.Context, address string) (TxStats, error) {
	txs, err := c.txlist(ctx, address, "desc", MaxTxListOffset)
	if err != nil {
		return TxStats{}, err
	}

	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(WeiToEther(parseWei(tx.Value)))
	}
	return TxStats{Count: len(txs), Volume: total}, nil
}

// FirstTxTime returns the timestamp of the wallet's earliest transaction.
// ok is false when the wallet has no history.
func (c *EtherscanClient) FirstTxTime(ctx context.Context, address string) (t time.Time, ok bool, err error) {
	txs, err := c.txlist(ctx, address, "asc", 1)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(txs) == 0 {
		return time.Time{}, false, nil
	}

	sec, err := strconv.ParseInt(txs[0].TimeStamp, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse timestamp %q: %w", txs[0].TimeStamp, err)
	}
	return time.Unix(sec, 0), true, nil
}

func (c *EtherscanClient) txlist(ctx context.Context, address, sort string, offset int) (txs []etherscanTx, err error) {
	defer func(start time.Time) {
		observability.RecordUpstreamCall("etherscan", "txlist", time.Since(start).Seconds(), err)
	}(time.Now())

	q := url.Values{}
	q.Set("chainid", c.chainID)
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("sort", sort)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var r etherscanResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if r.Status != "1" {
		if r.Message == noTransactionsMessage {
			return nil, nil
		}
		var detail string
		_ = json.Unmarshal(r.Result, &detail)
		return nil, fmt.Errorf("%w: %s: %s", ErrEtherscan, r.Message, detail)
	}

	if err := json.Unmarshal(r.Result, &txs); err != nil {
		return nil, fmt.Errorf("unmarshal txlist: %w", err)
	}
	return txs, nil
}

// WeiToEther converts a wei amount to ether without float rounding.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18)
}

func parseWei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}
