package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Validation failures
var (
	ErrEmptyMessage    = fmt.Errorf("message is empty")
	ErrEmptyGroupName  = fmt.Errorf("group name is empty")
	ErrNoGroupSelected = fmt.Errorf("no group selected")
	ErrInvalidPayload  = fmt.Errorf("invalid payload")
	ErrInvalidPassword = fmt.Errorf("password does not meet complexity rules")
)

// Authorization failures
var (
	ErrNotAuthenticated   = fmt.Errorf("no authenticated user")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrSessionExpired     = fmt.Errorf("session expired")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
)

// Backend failures
var (
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrBackendUnavailable = fmt.Errorf("backend unavailable")
	ErrSubscriptionClosed = fmt.Errorf("subscription closed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

var codeByError = []struct {
	err  error
	code codes.Code
}{
	{ErrEmptyMessage, codes.InvalidArgument},
	{ErrEmptyGroupName, codes.InvalidArgument},
	{ErrInvalidPayload, codes.InvalidArgument},
	{ErrInvalidPassword, codes.InvalidArgument},
	{ErrNotAuthenticated, codes.Unauthenticated},
	{ErrInvalidCredentials, codes.Unauthenticated},
	{ErrSessionExpired, codes.Unauthenticated},
	{ErrUserAlreadyExists, codes.AlreadyExists},
	{ErrGroupNotFound, codes.NotFound},
	{ErrMessageNotFound, codes.NotFound},
	{ErrBackendUnavailable, codes.Unavailable},
}

// MapToGRPCError turns a domain error into a gRPC status.
// Unknown errors become Internal.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range codeByError {
		if stderrors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// FromGRPCError maps a gRPC status back to the sentinel the client can test with errors.Is.
// The original message is kept.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		if sentinel := matchSentinel(st.Message(), ErrInvalidCredentials, ErrSessionExpired); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, st.Message())
	case codes.AlreadyExists:
		return ErrUserAlreadyExists
	case codes.NotFound:
		if sentinel := matchSentinel(st.Message(), ErrMessageNotFound); sentinel != nil {
			return sentinel
		}
		return ErrGroupNotFound
	case codes.InvalidArgument:
		if sentinel := matchSentinel(st.Message(), ErrEmptyMessage, ErrEmptyGroupName, ErrInvalidPassword); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("%w: %s", ErrInvalidPayload, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, st.Message())
	default:
		return fmt.Errorf("backend error (%s): %s", st.Code(), st.Message())
	}
}

// matchSentinel finds the sentinel a status message was built from, wrapped or not.
func matchSentinel(msg string, candidates ...error) error {
	for _, sentinel := range candidates {
		if strings.HasPrefix(msg, sentinel.Error()) {
			return sentinel
		}
	}
	return nil
}
