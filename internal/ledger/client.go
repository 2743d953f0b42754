// internal/ledger/client.go
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/model"
)

// Client reads the incoming-transaction feed of an already-deployed ledger
// index. Read only: it never holds or moves funds.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Incoming returns the recent incoming transactions for an address. All
// failures come back as ErrLedgerAPI so watchers can retry on their normal
// poll interval.
func (c *Client) Incoming(ctx context.Context, address string) ([]model.Transaction, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/transactions", c.BaseURL, url.PathEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.NewLedgerAPI(err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, appErrors.NewLedgerAPI(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.NewLedgerAPI(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload struct {
		Transactions []model.Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, appErrors.NewLedgerAPI(err)
	}

	return payload.Transactions, nil
}
