package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pekdex/dexcore/pkg/dex/model"
)

// Mechanism is one delivery path for a matched trade. A mechanism that
// errors or is unreachable simply yields to the next one in the chain.
type Mechanism interface {
	Name() string
	Deliver(ctx context.Context, intent *model.TradeIntent) (string, error)
}

// customJSON is the market contract instruction understood by the settlement
// network.
type customJSON struct {
	ContractName    string          `json:"contractName"`
	ContractAction  string          `json:"contractAction"`
	ContractPayload contractPayload `json:"contractPayload"`
}

type contractPayload struct {
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Ref      string `json:"ref,omitempty"`
}

func newCustomJSON(intent *model.TradeIntent) customJSON {
	return customJSON{
		ContractName:   "market",
		ContractAction: string(intent.Action),
		ContractPayload: contractPayload{
			Symbol:   intent.Symbol(),
			Quantity: intent.Quantity.String(),
			Price:    intent.Price.String(),
			Ref:      intent.Reference(),
		},
	}
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// broadcastMechanism submits the signed instruction directly to a settlement
// node. The account's active key must be configured; a missing key fails this
// mechanism only, not the whole dispatch.
type broadcastMechanism struct {
	endpoint    string
	credentials map[string]string // account -> active key
	client      *http.Client
}

func (m *broadcastMechanism) Name() string { return "broadcast" }

type broadcastRequest struct {
	ID            string     `json:"id"`
	JSON          customJSON `json:"json"`
	RequiredAuths []string   `json:"required_auths"`
	ActiveKey     string     `json:"active_key"`
}

type broadcastResponse struct {
	TrxID string `json:"trx_id"`
}

func (m *broadcastMechanism) Deliver(ctx context.Context, intent *model.TradeIntent) (string, error) {
	key := m.credentials[intent.Account]
	if key == "" {
		return "", fmt.Errorf("%w: %s", errNoCredential, intent.Account)
	}

	req := broadcastRequest{
		ID:            "ssc-mainnet-hive",
		JSON:          newCustomJSON(intent),
		RequiredAuths: []string{intent.Account},
		ActiveKey:     key,
	}

	var resp broadcastResponse
	if err := postJSON(ctx, m.client, m.endpoint, req, &resp); err != nil {
		return "", err
	}
	if resp.TrxID == "" {
		return "", errBroadcastRejected
	}

	return "broadcast:" + resp.TrxID, nil
}

// relayMechanism submits the same instruction, plus the credential, to a
// backup relay endpoint.
type relayMechanism struct {
	endpoint    string
	credentials map[string]string
	client      *http.Client
}

func (m *relayMechanism) Name() string { return "relay" }

type relayRequest struct {
	Account   string `json:"account"`
	ActiveKey string `json:"active_key"`
	ID        string `json:"id"`
	JSON      string `json:"json"`
}

func (m *relayMechanism) Deliver(ctx context.Context, intent *model.TradeIntent) (string, error) {
	cj, err := json.Marshal(newCustomJSON(intent))
	if err != nil {
		return "", err
	}

	req := relayRequest{
		Account:   intent.Account,
		ActiveKey: m.credentials[intent.Account],
		ID:        "ssc-mainnet-hive",
		JSON:      string(cj),
	}

	if err := postJSON(ctx, m.client, m.endpoint, req, nil); err != nil {
		return "", err
	}
	return "relay:" + intent.Reference(), nil
}

// routerMechanism submits a simplified order payload to a third-party order
// router; no credential field is required.
type routerMechanism struct {
	endpoint string
	client   *http.Client
}

func (m *routerMechanism) Name() string { return "router" }

type routerRequest struct {
	Account  string `json:"account"`
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Side     string `json:"side"`
	Ref      string `json:"ref"`
}

func (m *routerMechanism) Deliver(ctx context.Context, intent *model.TradeIntent) (string, error) {
	req := routerRequest{
		Account:  intent.Account,
		Symbol:   intent.Symbol(),
		Quantity: intent.Quantity.String(),
		Price:    intent.Price.String(),
		Side:     string(intent.Action),
		Ref:      intent.Reference(),
	}

	if err := postJSON(ctx, m.client, m.endpoint, req, nil); err != nil {
		return "", err
	}
	return "router:" + intent.Reference(), nil
}
