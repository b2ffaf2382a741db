package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pekdex/dexcore/config"
	"go.uber.org/zap"
)

// AccountValidator checks account existence against a node endpoint. Any
// lookup error is treated as "does not exist".
type AccountValidator struct {
	endpoint string
	http     *http.Client
	log      *zap.SugaredLogger
}

func NewAccountValidator(cfg *config.OracleConfig) *AccountValidator {
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &AccountValidator{
		endpoint: cfg.NodeEndpoint,
		http:     &http.Client{Timeout: timeout},
		log:      zap.S().With("component", "validator"),
	}
}

type accountsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type accountsResponse struct {
	Result []json.RawMessage `json:"result"`
}

// Exists fails closed: network errors, bad statuses and empty results all
// report the account as missing.
func (v *AccountValidator) Exists(ctx context.Context, account string) bool {
	if account == "" {
		return false
	}

	body, err := json.Marshal(accountsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "condenser_api.get_accounts",
		Params:  []interface{}{[]string{account}},
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		v.log.Warnf("validate account %s fail: %v", account, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		v.log.Warnf("validate account %s fail: %s", account, fmt.Sprintf("status %d: %s", resp.StatusCode, respBody))
		return false
	}

	var accounts accountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		v.log.Warnf("validate account %s decode fail: %v", account, err)
		return false
	}

	return len(accounts.Result) > 0
}
