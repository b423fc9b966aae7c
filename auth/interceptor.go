package auth

import (
	"context"
	"groupchat/domain"
	"groupchat/infrastructure/grpc/wire"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Methods that do not require JWT authentication.
var publicMethods = map[string]struct{}{
	wire.FullMethod(wire.SignUpMethod):  {},
	wire.FullMethod(wire.SignInMethod):  {},
	wire.FullMethod(wire.RefreshMethod): {},
}

type contextKey string

const userKey contextKey = "user"

// Interceptor handles JWT validation for incoming gRPC calls.
type Interceptor struct {
	tokens *TokenIssuer
}

func NewInterceptor(tokens *TokenIssuer) *Interceptor {
	return &Interceptor{tokens: tokens}
}

func (i *Interceptor) Unary(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublicMethod(info.FullMethod) {
		return handler(ctx, req)
	}
	authenticated, err := i.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(authenticated, req)
}

func (i *Interceptor) Stream(srv any, stream grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublicMethod(info.FullMethod) {
		return handler(srv, stream)
	}
	authenticated, err := i.authenticate(stream.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: stream, ctx: authenticated})
}

// authenticate validates the bearer token and injects the user into the context
// for downstream service layers.
func (i *Interceptor) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata is missing")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
	}

	// Expecting the standard "Bearer <token>" format
	tokenStr := strings.TrimPrefix(values[0], "Bearer ")

	claims, err := i.tokens.ValidateToken(tokenStr)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}
	return WithUser(ctx, domain.User{ID: claims.UserID, Email: claims.Email}), nil
}

func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

func isPublicMethod(method string) bool {
	_, ok := publicMethods[method]
	return ok
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
