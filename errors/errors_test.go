package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapToGRPCError(t *testing.T) {
	req := require.New(t)

	req.Nil(MapToGRPCError(nil))
	req.Equal(codes.InvalidArgument, status.Code(MapToGRPCError(ErrEmptyMessage)))
	req.Equal(codes.Unauthenticated, status.Code(MapToGRPCError(ErrInvalidCredentials)))
	req.Equal(codes.AlreadyExists, status.Code(MapToGRPCError(fmt.Errorf("create: %w", ErrUserAlreadyExists))))
	req.Equal(codes.Internal, status.Code(MapToGRPCError(stderrors.New("disk on fire"))))

	already := status.Error(codes.PermissionDenied, "nope")
	req.Equal(already, MapToGRPCError(already))
}

func TestFromGRPCError_RoundTrip(t *testing.T) {
	req := require.New(t)

	for _, sentinel := range []error{
		ErrEmptyMessage, ErrEmptyGroupName, ErrInvalidPassword,
		ErrInvalidCredentials, ErrSessionExpired, ErrUserAlreadyExists,
		ErrGroupNotFound, ErrMessageNotFound,
	} {
		err := FromGRPCError(MapToGRPCError(fmt.Errorf("%w: details", sentinel)))
		req.ErrorIs(err, sentinel, sentinel.Error())
	}

	req.ErrorIs(FromGRPCError(status.Error(codes.Unavailable, "connection refused")), ErrBackendUnavailable)
	req.ErrorIs(FromGRPCError(status.Error(codes.Unauthenticated, "token is missing")), ErrNotAuthenticated)
	req.Nil(FromGRPCError(nil))
}
