package grpcapi

import (
	"context"
	"fmt"

	"github.com/LavaJover/agro-escrow-service/internal/delivery/grpcapi/mappers"
	"github.com/LavaJover/agro-escrow-service/internal/domain"
	escrowusecase "github.com/LavaJover/agro-escrow-service/internal/usecase/escrow"
	settlementusecase "github.com/LavaJover/agro-escrow-service/internal/usecase/settlement"
	"google.golang.org/protobuf/types/known/structpb"
)

type EscrowHandler struct {
	escrowUsecase     escrowusecase.EscrowUsecase
	settlementUsecase settlementusecase.SettlementUsecase
}

func NewEscrowHandler(escrowUC escrowusecase.EscrowUsecase, settlementUC settlementusecase.SettlementUsecase) *EscrowHandler {
	return &EscrowHandler{
		escrowUsecase:     escrowUC,
		settlementUsecase: settlementUC,
	}
}

var _ EscrowServiceServer = (*EscrowHandler)(nil)

func (h *EscrowHandler) Create(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	input, err := mappers.FromStructCreateInput(r)
	if err != nil {
		return nil, toStatus(err)
	}
	escrow, err := h.escrowUsecase.Create(ctx, input)
	if err != nil {
		return nil, toStatus(err)
	}
	return escrowResponse(escrow)
}

func (h *EscrowHandler) Fund(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	escrow, err := h.escrowUsecase.Fund(ctx, mappers.StringField(r, "escrow_id"), mappers.StringField(r, "payment_reference"))
	if err != nil {
		return nil, toStatus(err)
	}
	return escrowResponse(escrow)
}

func (h *EscrowHandler) ConfirmDelivery(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	escrow, err := h.escrowUsecase.ConfirmDelivery(ctx, mappers.StringField(r, "escrow_id"), mappers.StringField(r, "actor_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	return escrowResponse(escrow)
}

// Release settles through the orchestrator so the listing store is signaled.
func (h *EscrowHandler) Release(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	out, err := h.settlementUsecase.Release(ctx, mappers.StringField(r, "escrow_id"), mappers.StringField(r, "actor_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	fields := mappers.EscrowFields(out.Escrow)
	fields["listing_signal"] = out.ListingSignal
	if out.ListingWarning != "" {
		fields["listing_warning"] = out.ListingWarning
	}
	return newStruct(fields)
}

func (h *EscrowHandler) RequestRefund(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	escrow, err := h.escrowUsecase.RequestRefund(ctx,
		mappers.StringField(r, "escrow_id"),
		mappers.StringField(r, "actor_id"),
		mappers.StringField(r, "reason"),
	)
	if err != nil {
		return nil, toStatus(err)
	}
	return escrowResponse(escrow)
}

func (h *EscrowHandler) Dispute(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	escrow, err := h.escrowUsecase.Dispute(ctx,
		mappers.StringField(r, "escrow_id"),
		mappers.StringField(r, "actor_id"),
		mappers.StringField(r, "reason"),
	)
	if err != nil {
		return nil, toStatus(err)
	}
	return escrowResponse(escrow)
}

func (h *EscrowHandler) Get(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	escrow, err := h.escrowUsecase.Get(ctx, mappers.StringField(r, "escrow_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	return escrowResponse(escrow)
}

func (h *EscrowHandler) ListForUser(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	escrows, err := h.escrowUsecase.ListForUser(ctx, mappers.StringField(r, "user_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]map[string]any, len(escrows))
	for i, e := range escrows {
		items[i] = mappers.EscrowFields(e)
	}
	return listResponse("escrows", items)
}

func (h *EscrowHandler) History(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	events, err := h.escrowUsecase.History(ctx, mappers.StringField(r, "escrow_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]map[string]any, len(events))
	for i, ev := range events {
		items[i] = mappers.EventFields(ev)
	}
	return listResponse("events", items)
}

func (h *EscrowHandler) VerifyHistory(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	report, err := h.escrowUsecase.VerifyHistory(ctx, mappers.StringField(r, "escrow_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(mappers.ReportFields(report))
}

func escrowResponse(escrow *domain.Escrow) (*structpb.Struct, error) {
	return newStruct(mappers.EscrowFields(escrow))
}

func listResponse(key string, items []map[string]any) (*structpb.Struct, error) {
	out, err := mappers.ToStructList(key, items)
	if err != nil {
		return nil, toStatus(fmt.Errorf("%w: %v", domain.ErrEncoding, err))
	}
	return out, nil
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, toStatus(fmt.Errorf("%w: %v", domain.ErrEncoding, err))
	}
	return out, nil
}
