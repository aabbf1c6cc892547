package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type listingSignalRequest struct {
	EscrowID string `json:"escrow_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPListingClient tells the marketplace listing service about settled
// escrows.
type HTTPListingClient struct {
	Address string
	client  *http.Client
}

func NewHTTPListingClient(address string, timeout time.Duration) (*HTTPListingClient, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("listing service address is empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPListingClient{
		Address: strings.TrimRight(address, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Idempotency keys are scoped to escrow and signal.
const (
	listingSoldSignal    = "listing-sold"
	offerCompletedSignal = "offer-completed"
)

func idempotencyKey(escrowID, signal string) string {
	return escrowID + ":" + signal
}

func (c *HTTPListingClient) MarkListingSold(ctx context.Context, listingID, escrowID string) error {
	return c.post(ctx, fmt.Sprintf("%s/listings/%s/sold", c.Address, url.PathEscape(listingID)), escrowID, listingSoldSignal)
}

func (c *HTTPListingClient) MarkOfferCompleted(ctx context.Context, offerID, escrowID string) error {
	return c.post(ctx, fmt.Sprintf("%s/offers/%s/complete", c.Address, url.PathEscape(offerID)), escrowID, offerCompletedSignal)
}

func (c *HTTPListingClient) post(ctx context.Context, endpoint, escrowID, signal string) error {
	requestBodyBytes, err := json.Marshal(listingSignalRequest{EscrowID: escrowID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey(escrowID, signal))

	response, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("listing service returned %d", response.StatusCode)
	}
	return fmt.Errorf("listing service returned %d: %s", response.StatusCode, errResp.Error)
}
