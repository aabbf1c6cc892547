package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/LavaJover/agro-escrow-service/internal/delivery/http/dto/escrow/request"
	"github.com/LavaJover/agro-escrow-service/internal/delivery/http/dto/escrow/response"
	"github.com/LavaJover/agro-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	escrowusecase "github.com/LavaJover/agro-escrow-service/internal/usecase/escrow"
	settlementusecase "github.com/LavaJover/agro-escrow-service/internal/usecase/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const UserIDHeader = "X-User-ID"

const maxBodyBytes = 1 << 20

type EscrowHandler struct {
	escrowUsecase     escrowusecase.EscrowUsecase
	settlementUsecase settlementusecase.SettlementUsecase
	defaultCurrency   string
}

func NewEscrowHandler(escrowUC escrowusecase.EscrowUsecase, settlementUC settlementusecase.SettlementUsecase, defaultCurrency string) *EscrowHandler {
	return &EscrowHandler{
		escrowUsecase:     escrowUC,
		settlementUsecase: settlementUC,
		defaultCurrency:   defaultCurrency,
	}
}

func (h *EscrowHandler) Create(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req request.CreateEscrowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = h.defaultCurrency
	}
	amount, err := parseMajorUnits("amount", req.Amount, currency)
	if err != nil {
		writeError(w, err)
		return
	}
	fees, err := parseMajorUnits("fees", req.Fees, currency)
	if err != nil {
		writeError(w, err)
		return
	}

	escrow, err := h.escrowUsecase.Create(r.Context(), &escrowdto.CreateEscrowInput{
		BuyerID:                     buyerID,
		SellerID:                    req.SellerID,
		ListingID:                   req.ListingID,
		OfferID:                     req.OfferID,
		Amount:                      amount,
		Fees:                        fees,
		Currency:                    currency,
		AutoReleaseAfterDays:        req.AutoReleaseAfterDays,
		RequireDeliveryConfirmation: req.RequireDeliveryConfirmation,
		DisputeWindowDays:           req.DisputeWindowDays,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEscrowResponse(escrow))
}

// Fund is the manual path for payment confirmations; the gateway normally
// delivers them over Kafka. The router mounts it behind RequireGatewayToken.
func (h *EscrowHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req request.FundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	escrow, err := h.escrowUsecase.Fund(r.Context(), chi.URLParam(r, "escrowID"), req.PaymentReference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowResponse(escrow))
}

func (h *EscrowHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	escrow, err := h.escrowUsecase.ConfirmDelivery(r.Context(), chi.URLParam(r, "escrowID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowResponse(escrow))
}

func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	out, err := h.settlementUsecase.Release(r.Context(), chi.URLParam(r, "escrowID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response.ReleaseResponse{
		EscrowResponse: toEscrowResponse(out.Escrow),
		ListingSignal:  out.ListingSignal,
		ListingWarning: out.ListingWarning,
	})
}

func (h *EscrowHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req request.ReasonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	escrow, err := h.escrowUsecase.RequestRefund(r.Context(), chi.URLParam(r, "escrowID"), userID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowResponse(escrow))
}

func (h *EscrowHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req request.ReasonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	escrow, err := h.escrowUsecase.Dispute(r.Context(), chi.URLParam(r, "escrowID"), userID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowResponse(escrow))
}

func (h *EscrowHandler) Get(w http.ResponseWriter, r *http.Request) {
	escrow, ok := h.partyEscrow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEscrowResponse(escrow))
}

func (h *EscrowHandler) History(w http.ResponseWriter, r *http.Request) {
	escrow, ok := h.partyEscrow(w, r)
	if !ok {
		return
	}
	escrowID := escrow.ID
	events, err := h.escrowUsecase.History(r.Context(), escrowID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := response.EventListResponse{EscrowID: escrowID, Events: make([]response.EventResponse, len(events))}
	for i, ev := range events {
		out.Events[i] = toEventResponse(ev)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EscrowHandler) VerifyHistory(w http.ResponseWriter, r *http.Request) {
	escrow, ok := h.partyEscrow(w, r)
	if !ok {
		return
	}
	report, err := h.escrowUsecase.VerifyHistory(r.Context(), escrow.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response.VerificationResponse{
		EscrowID:      report.EscrowID,
		GenesisHash:   report.GenesisHash,
		Events:        report.Events,
		Valid:         report.Valid,
		BrokenAt:      report.BrokenAt,
		Reason:        report.Reason,
		LastEventHash: report.LastEventHash,
	})
}

// ListForUser lists the caller's own escrows only.
func (h *EscrowHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if chi.URLParam(r, "userID") != userID {
		writeError(w, fmt.Errorf("%w: %s may not list escrows of another user", domain.ErrUnauthorized, userID))
		return
	}
	escrows, err := h.escrowUsecase.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := response.EscrowListResponse{Escrows: make([]response.EscrowResponse, len(escrows))}
	for i, e := range escrows {
		out.Escrows[i] = toEscrowResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// partyEscrow loads the escrow named in the path and admits only its buyer
// and seller.
func (h *EscrowHandler) partyEscrow(w http.ResponseWriter, r *http.Request) (*domain.Escrow, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	escrow, err := h.escrowUsecase.Get(r.Context(), chi.URLParam(r, "escrowID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !escrow.IsParty(userID) {
		writeError(w, fmt.Errorf("%w: %s is not a party of escrow %s", domain.ErrUnauthorized, userID, escrow.ID))
		return nil, false
	}
	return escrow, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		writeError(w, fmt.Errorf("%w: %s header is required", domain.ErrInvalidArgument, UserIDHeader))
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidArgument, err))
		return false
	}
	return true
}

// parseMajorUnits turns "100.50" into minor units. An empty value is zero.
func parseMajorUnits(field, value, currency string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	major, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a decimal string", domain.ErrInvalidArgument, field)
	}
	minor, err := domain.ToMinorUnits(major, currency)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return minor, nil
}
