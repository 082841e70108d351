package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

// HTTPGateway posts charges to an external payments service.
type HTTPGateway struct {
	Client   *http.Client
	Endpoint string
	Logger   *slog.Logger
}

type chargeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Source      string `json:"source"`
	Payee       string `json:"payee"`
}

type chargeResponse struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
}

func (g *HTTPGateway) Charge(ctx context.Context, amount money.Money, sourceToken, payeeToken string) error {
	if g == nil || g.Client == nil {
		return errors.New("payments: http client not configured")
	}
	if g.Endpoint == "" {
		return errors.New("payments: endpoint not configured")
	}
	if sourceToken == "" {
		return ErrSourceRequired
	}
	if payeeToken == "" {
		return ErrPayeeRequired
	}
	if !amount.IsPositive() {
		return ErrAmountInvalid
	}

	body, err := json.Marshal(chargeRequest{
		AmountCents: amount.Amount,
		Currency:    amount.Currency,
		Source:      sourceToken,
		Payee:       payeeToken,
	})
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(request)
	if err != nil {
		g.logError("charge request failed", payeeToken, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payments: charge returned status %d: %s", resp.StatusCode, string(snippet))
		g.logError("charge returned error", payeeToken, err)
		return err
	}

	var decoded chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		g.logError("charge decode failed", payeeToken, err)
		return err
	}
	if decoded.Status != "" && decoded.Status != "succeeded" {
		return fmt.Errorf("payments: charge %s ended in status %q", decoded.ChargeID, decoded.Status)
	}
	return nil
}

func (g *HTTPGateway) logError(msg string, payee string, err error) {
	if g.Logger == nil {
		return
	}
	g.Logger.Error(msg, "payee", payee, "error", err)
}

var _ policies.PaymentsPort = (*HTTPGateway)(nil)
