package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pekdex/dexcore/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errUnexpectedStatus = errors.New("unexpected status from market api")

type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type OrderBook struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

type TradeRecord struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Timestamp int64           `json:"timestamp"`
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// Client reads market data from the settlement network's contract API. A
// redis cache in front of BestPrice keeps the hot path off the network.
type Client struct {
	endpoint string
	fallback decimal.Decimal
	http     *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
	log      *zap.SugaredLogger
}

func NewClient(cfg *config.OracleConfig, cache *redis.Client) *Client {
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	fallback := decimal.New(1, -3) // 0.001
	if cfg.FallbackPrice != "" {
		if p, err := decimal.NewFromString(cfg.FallbackPrice); err == nil && p.IsPositive() {
			fallback = p
		}
	}

	cacheTTL := 30 * time.Second
	if cfg.CacheTTLSeconds > 0 {
		cacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}

	return &Client{
		endpoint: cfg.MarketEndpoint,
		fallback: fallback,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      zap.S().With("component", "oracle"),
	}
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d %s", errUnexpectedStatus, resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}
	if len(rpcResp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

func (c *Client) GetOrderBook(ctx context.Context, base, quote string) (*OrderBook, error) {
	var book OrderBook
	err := c.call(ctx, "getOrderBook", map[string]interface{}{
		"symbol": base + ":" + quote,
		"limit":  50,
	}, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) GetTradeHistory(ctx context.Context, base, quote string, limit int) ([]TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var trades []TradeRecord
	err := c.call(ctx, "find", map[string]interface{}{
		"contract": "market",
		"table":    "trades",
		"query":    map[string]string{"symbol": base + ":" + quote},
		"limit":    limit,
		"sort":     "desc",
	}, &trades)
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// BestPrice returns the best ask, else the best bid, else the last traded
// price from the metrics table, else the configured fallback price.
func (c *Client) BestPrice(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	cacheKey := "dexcore:price:" + base + ":" + quote
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			if p, perr := decimal.NewFromString(cached); perr == nil {
				return p, nil
			}
		}
	}

	book, err := c.GetOrderBook(ctx, base, quote)
	if err != nil {
		return decimal.Zero, err
	}

	price := decimal.Zero
	switch {
	case len(book.Asks) > 0:
		price = book.Asks[0].Price
	case len(book.Bids) > 0:
		price = book.Bids[0].Price
	default:
		price = c.lastPrice(ctx, base)
	}

	if !price.IsPositive() {
		price = c.fallback
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, price.String(), c.cacheTTL).Err(); err != nil {
			c.log.Debugf("cache price fail: %v", err)
		}
	}
	return price, nil
}

// lastPrice consults the secondary metrics source; zero means no price.
func (c *Client) lastPrice(ctx context.Context, base string) decimal.Decimal {
	var metrics []struct {
		LastPrice decimal.Decimal `json:"lastPrice"`
	}
	err := c.call(ctx, "find", map[string]interface{}{
		"contract": "market",
		"table":    "metrics",
		"query":    map[string]string{"symbol": base},
	}, &metrics)
	if err != nil {
		c.log.Debugf("metrics lookup fail: %v", err)
		return decimal.Zero
	}
	if len(metrics) == 0 {
		return decimal.Zero
	}
	return metrics[0].LastPrice
}
