package mappers

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	"google.golang.org/protobuf/types/known/structpb"
)

// EscrowFields renders a contract as plain values. Amounts stay in minor units;
// the *_display fields carry the major-unit rendering.
func EscrowFields(e *domain.Escrow) map[string]any {
	fields := map[string]any{
		"escrow_id":                     e.ID,
		"transaction_id":                e.TransactionID,
		"buyer_id":                      e.BuyerID,
		"seller_id":                     e.SellerID,
		"listing_id":                    e.ListingID,
		"amount":                        e.Money.Amount,
		"fees":                          e.Money.Fees,
		"total_amount":                  e.Money.TotalAmount,
		"total_amount_display":          domain.FormatMinorUnits(e.Money.TotalAmount, e.Money.Currency),
		"currency":                      e.Money.Currency,
		"status":                        string(e.Status),
		"auto_release_after_days":       e.Policy.AutoReleaseAfterDays,
		"require_delivery_confirmation": e.Policy.RequireDeliveryConfirmation,
		"dispute_window_days":           e.Policy.DisputeWindowDays,
		"payment_reference":             e.PaymentReference,
		"blockchain_hash":               e.BlockchainHash,
		"version":                       e.Version,
		"created_at":                    formatTime(&e.CreatedAt),
		"updated_at":                    formatTime(&e.UpdatedAt),
	}
	if e.OfferID != nil {
		fields["offer_id"] = *e.OfferID
	}
	for name, t := range map[string]*time.Time{
		"funded_at":             e.FundedAt,
		"released_at":           e.ReleasedAt,
		"refunded_at":           e.RefundedAt,
		"delivery_confirmed_at": e.DeliveryConfirmedAt,
		"disputed_at":           e.DisputedAt,
		"auto_release_at":       e.AutoReleaseAt,
	} {
		if t != nil {
			fields[name] = formatTime(t)
		}
	}
	return fields
}

func EventFields(ev *domain.EscrowEvent) map[string]any {
	fields := map[string]any{
		"event_id":   ev.ID,
		"escrow_id":  ev.EscrowID,
		"sequence":   ev.Sequence,
		"type":       string(ev.Type),
		"actor_id":   ev.ActorID,
		"detail":     ev.Detail,
		"prev_hash":  ev.PrevHash,
		"hash":       ev.Hash,
		"created_at": formatTime(&ev.CreatedAt),
	}
	if len(ev.Data) > 0 {
		fields["data"] = ev.Data
	}
	return fields
}

func ReportFields(r *domain.VerificationReport) map[string]any {
	return map[string]any{
		"escrow_id":       r.EscrowID,
		"genesis_hash":    r.GenesisHash,
		"events":          r.Events,
		"valid":           r.Valid,
		"broken_at":       r.BrokenAt,
		"reason":          r.Reason,
		"last_event_hash": r.LastEventHash,
	}
}

func ToStructList(key string, items []map[string]any) (*structpb.Struct, error) {
	list := make([]any, len(items))
	for i, item := range items {
		list[i] = item
	}
	return structpb.NewStruct(map[string]any{key: list})
}

func formatTime(t *time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func FromStructCreateInput(s *structpb.Struct) (*escrowdto.CreateEscrowInput, error) {
	amount, err := Int64Field(s, "amount")
	if err != nil {
		return nil, err
	}
	fees, err := Int64Field(s, "fees")
	if err != nil {
		return nil, err
	}
	input := &escrowdto.CreateEscrowInput{
		BuyerID:                     StringField(s, "buyer_id"),
		SellerID:                    StringField(s, "seller_id"),
		ListingID:                   StringField(s, "listing_id"),
		Amount:                      amount,
		Fees:                        fees,
		Currency:                    StringField(s, "currency"),
		RequireDeliveryConfirmation: BoolField(s, "require_delivery_confirmation"),
	}
	if offer := StringField(s, "offer_id"); offer != "" {
		input.OfferID = &offer
	}
	if input.AutoReleaseAfterDays, err = optionalIntField(s, "auto_release_after_days"); err != nil {
		return nil, err
	}
	if input.DisputeWindowDays, err = optionalIntField(s, "dispute_window_days"); err != nil {
		return nil, err
	}
	return input, nil
}

func StringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func BoolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}

// Int64Field accepts whole JSON numbers and decimal strings; strings keep
// values above 2^53 exact. A missing field is zero.
func Int64Field(s *structpb.Struct, name string) (int64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("%w: %s must be a whole number", domain.ErrInvalidArgument, name)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, name)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidArgument, name)
	}
}

func optionalIntField(s *structpb.Struct, name string) (*int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	n, err := Int64Field(s, name)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return nil, fmt.Errorf("%w: %s out of range", domain.ErrInvalidArgument, name)
	}
	days := int(n)
	return &days, nil
}
