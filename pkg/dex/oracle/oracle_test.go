package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pekdex/dexcore/config"
	"github.com/shopspring/decimal"
)

type rpcCall struct {
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

// marketServer answers getOrderBook and metrics lookups with canned results.
func marketServer(t *testing.T, book *OrderBook, lastPrice string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Fatalf("decode rpc call: %v", err)
		}

		var result interface{}
		switch {
		case call.Method == "getOrderBook":
			result = book
		case call.Method == "find" && call.Params["table"] == "metrics":
			if lastPrice == "" {
				result = []interface{}{}
			} else {
				result = []map[string]string{{"lastPrice": lastPrice}}
			}
		default:
			t.Fatalf("unexpected rpc call %s %v", call.Method, call.Params)
		}

		raw, _ := json.Marshal(result) // nolint
		json.NewEncoder(w).Encode(map[string]json.RawMessage{"result": raw}) // nolint
	}))
}

func testOracle(endpoint string) *Client {
	return NewClient(&config.OracleConfig{
		MarketEndpoint: endpoint,
		FallbackPrice:  "0.001",
	}, nil)
}

func level(price string) Level {
	p, _ := decimal.NewFromString(price)
	q, _ := decimal.NewFromString("10")
	return Level{Price: p, Quantity: q}
}

func TestBestPriceUsesBestAsk(t *testing.T) {
	srv := marketServer(t, &OrderBook{
		Asks: []Level{level("9.5"), level("9.9")},
		Bids: []Level{level("9.1")},
	}, "")
	defer srv.Close()

	price, err := testOracle(srv.URL).BestPrice(context.Background(), "PEK", "SWAP.HIVE")
	if err != nil {
		t.Fatalf("BestPrice: %v", err)
	}
	if price.String() != "9.5" {
		t.Errorf("expected best ask 9.5, got %s", price)
	}
}

func TestBestPriceFallsBackToBestBid(t *testing.T) {
	srv := marketServer(t, &OrderBook{Bids: []Level{level("9.1")}}, "")
	defer srv.Close()

	price, err := testOracle(srv.URL).BestPrice(context.Background(), "PEK", "SWAP.HIVE")
	if err != nil {
		t.Fatalf("BestPrice: %v", err)
	}
	if price.String() != "9.1" {
		t.Errorf("expected best bid 9.1, got %s", price)
	}
}

func TestBestPriceFallsBackToLastTrade(t *testing.T) {
	srv := marketServer(t, &OrderBook{}, "8.75")
	defer srv.Close()

	price, err := testOracle(srv.URL).BestPrice(context.Background(), "PEK", "SWAP.HIVE")
	if err != nil {
		t.Fatalf("BestPrice: %v", err)
	}
	if price.String() != "8.75" {
		t.Errorf("expected last trade 8.75, got %s", price)
	}
}

func TestBestPriceFallsBackToConfiguredPrice(t *testing.T) {
	srv := marketServer(t, &OrderBook{}, "")
	defer srv.Close()

	price, err := testOracle(srv.URL).BestPrice(context.Background(), "PEK", "SWAP.HIVE")
	if err != nil {
		t.Fatalf("BestPrice: %v", err)
	}
	if price.String() != "0.001" {
		t.Errorf("expected configured fallback 0.001, got %s", price)
	}
}

func TestBestPriceSurfacesMarketErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := testOracle(srv.URL).BestPrice(context.Background(), "PEK", "SWAP.HIVE"); err == nil {
		t.Fatalf("expected error from unavailable market api")
	}
}

func TestGetTradeHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Fatalf("decode rpc call: %v", err)
		}
		if call.Params["table"] != "trades" {
			t.Errorf("expected trades table, got %v", call.Params["table"])
		}
		trades := []map[string]interface{}{
			{"symbol": "PEK:SWAP.HIVE", "price": "9.5", "quantity": "5", "timestamp": 1700000000},
			{"symbol": "PEK:SWAP.HIVE", "price": "9.4", "quantity": "2", "timestamp": 1699999000},
		}
		raw, _ := json.Marshal(trades) // nolint
		json.NewEncoder(w).Encode(map[string]json.RawMessage{"result": raw}) // nolint
	}))
	defer srv.Close()

	trades, err := testOracle(srv.URL).GetTradeHistory(context.Background(), "PEK", "SWAP.HIVE", 10)
	if err != nil {
		t.Fatalf("GetTradeHistory: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price.String() != "9.5" {
		t.Errorf("unexpected first trade price %s", trades[0].Price)
	}
}

func TestAccountValidatorFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Fatalf("decode rpc call: %v", err)
		}
		if call.Method != "condenser_api.get_accounts" {
			t.Errorf("unexpected method %s", call.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": []interface{}{}}) // nolint
	}))
	defer srv.Close()

	v := NewAccountValidator(&config.OracleConfig{NodeEndpoint: srv.URL})
	if v.Exists(context.Background(), "no-such-account") {
		t.Errorf("empty lookup result must report non-existent")
	}
	if v.Exists(context.Background(), "") {
		t.Errorf("blank account must report non-existent")
	}
}

func TestAccountValidatorFindsAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := []map[string]string{{"name": "peakecoin"}}
		raw, _ := json.Marshal(result) // nolint
		json.NewEncoder(w).Encode(map[string]json.RawMessage{"result": raw}) // nolint
	}))
	defer srv.Close()

	v := NewAccountValidator(&config.OracleConfig{NodeEndpoint: srv.URL})
	if !v.Exists(context.Background(), "peakecoin") {
		t.Errorf("known account must validate")
	}
}
