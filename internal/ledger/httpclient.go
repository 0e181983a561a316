package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"

	"mintgate/internal/platform/config"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/circuit"
	"mintgate/pkg/platform/sentinel"
)

// HTTPClient talks to the ledger service over its JSON API. A circuit breaker
// short-circuits calls while the ledger is down so control-plane requests fail
// fast instead of piling up on a dead dependency; one call in every
// probeInterval is let through to detect recovery.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	calls   atomic.Uint64
}

const probeInterval = 10

// NewHTTPClient builds a ledger client from configuration.
func NewHTTPClient(cfg config.LedgerConfig, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: circuit.New("ledger"),
		logger:  logger,
	}
}

type amountRequest struct {
	Account  domain.AccountID `json:"account"`
	Amount   uint64           `json:"amount"`
	Decimals uint8            `json:"decimals"`
}

type accountRequest struct {
	Account domain.AccountID `json:"account"`
}

type transferRequest struct {
	Source   domain.AccountID `json:"source"`
	Dest     domain.AccountID `json:"dest"`
	Amount   uint64           `json:"amount"`
	Decimals uint8            `json:"decimals"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Mint credits freshly issued tokens to the destination account.
func (c *HTTPClient) Mint(ctx context.Context, asset domain.AssetID, dest domain.AccountID, amount uint64, decimals uint8) error {
	return c.post(ctx, asset, "mint", amountRequest{Account: dest, Amount: amount, Decimals: decimals})
}

// Burn debits tokens from the source account.
func (c *HTTPClient) Burn(ctx context.Context, asset domain.AssetID, source domain.AccountID, amount uint64, decimals uint8) error {
	return c.post(ctx, asset, "burn", amountRequest{Account: source, Amount: amount, Decimals: decimals})
}

// Freeze marks an account frozen on the ledger.
func (c *HTTPClient) Freeze(ctx context.Context, asset domain.AssetID, account domain.AccountID) error {
	return c.post(ctx, asset, "freeze", accountRequest{Account: account})
}

// Thaw clears an account's frozen state on the ledger.
func (c *HTTPClient) Thaw(ctx context.Context, asset domain.AssetID, account domain.AccountID) error {
	return c.post(ctx, asset, "thaw", accountRequest{Account: account})
}

// TransferWithAuthority moves tokens under the permanent delegate authority.
func (c *HTTPClient) TransferWithAuthority(ctx context.Context, asset domain.AssetID, source, dest domain.AccountID, amount uint64, decimals uint8) error {
	return c.post(ctx, asset, "delegate-transfer", transferRequest{
		Source: source, Dest: dest, Amount: amount, Decimals: decimals,
	})
}

func (c *HTTPClient) post(ctx context.Context, asset domain.AssetID, op string, body any) error {
	if c.breaker.IsOpen() {
		if c.calls.Add(1)%probeInterval != 0 {
			return fmt.Errorf("ledger %s: %w", op, sentinel.ErrUnavailable)
		}
		c.logger.DebugContext(ctx, "ledger circuit open, probing", "operation", op)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode ledger request")
	}

	endpoint := fmt.Sprintf("%s/v1/assets/%s/%s", c.baseURL, url.PathEscape(asset.String()), op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build ledger request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "ledger circuit opened", "operation", op, "error", err)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "ledger circuit closed", "operation", op)
		}
		return nil
	}

	// 5xx responses count against the breaker; 4xx are caller errors and the
	// ledger itself is healthy.
	if resp.StatusCode >= 500 {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "ledger circuit opened",
				"operation", op, "status", resp.StatusCode)
		}
	} else {
		c.breaker.RecordSuccess()
	}

	return c.decodeError(resp, op)
}

func (c *HTTPClient) decodeError(resp *http.Response, op string) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return dErrors.Newf(dErrors.CodeInternal, "ledger %s failed with status %d", op, resp.StatusCode)
	}

	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return dErrors.Newf(dErrors.CodeInternal, "ledger %s failed with status %d", op, resp.StatusCode)
	}

	code := codeFromLedgerError(body.Error)
	msg := body.Description
	if msg == "" {
		msg = body.Error
	}
	return dErrors.Newf(code, "ledger %s rejected: %s", op, msg)
}

// codeFromLedgerError maps ledger error identifiers onto domain codes.
// Unknown identifiers degrade to internal so callers never mistake a new
// ledger failure mode for a policy decision.
func codeFromLedgerError(name string) dErrors.Code {
	switch name {
	case "account_frozen":
		return dErrors.CodeAccountFrozen
	case "invalid_account", "account_not_found":
		return dErrors.CodeInvalidAccount
	case "invalid_amount", "insufficient_balance":
		return dErrors.CodeInvalidAmount
	case "unauthorized":
		return dErrors.CodeUnauthorized
	default:
		return dErrors.CodeInternal
	}
}
