package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeFor(err), err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrAlreadyConfirmed):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrUnauthorized):
		return codes.PermissionDenied
	case errors.Is(err, domain.ErrConflict):
		return codes.Aborted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// LoggingInterceptor logs every call with its outcome and converts panics to
// Internal errors.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("grpc handler panic", "method", info.FullMethod, "panic", r)
			err = status.Error(codes.Internal, "internal error")
		}
		code := status.Code(err)
		attrs := []any{"method", info.FullMethod, "code", code.String(), "took", time.Since(started)}
		if code == codes.Internal || code == codes.Unknown {
			slog.Error("grpc call failed", append(attrs, "error", err.Error())...)
			return
		}
		slog.Debug("grpc call", attrs...)
	}()
	return handler(ctx, req)
}
