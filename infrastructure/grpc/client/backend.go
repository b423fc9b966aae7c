// Package client talks to the groupchat backend over gRPC and keeps the
// session of the signed in user.
package client

import (
	"context"
	stderrors "errors"
	"groupchat/codec"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"groupchat/infrastructure/grpc/wire"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// refreshRatio is the share of the token lifetime after which it is renewed.
const refreshRatio = 0.8

// Backend implements the client contracts over a gRPC connection.
type Backend struct {
	log   *slog.Logger
	rpc   *wire.BackendClient
	store SessionStore
	now   func() time.Time

	mu           sync.Mutex
	session      *domain.Session
	loaded       bool
	listeners    map[int]func(event.AuthStateChanged)
	nextListener int
}

var (
	_ contract.AuthBackend  = (*Backend)(nil)
	_ contract.GroupStore   = (*Backend)(nil)
	_ contract.MessageStore = (*Backend)(nil)
	_ contract.Searcher     = (*Backend)(nil)
	_ contract.Realtime     = (*Backend)(nil)
)

func NewBackend(log *slog.Logger, cc grpc.ClientConnInterface, store SessionStore) *Backend {
	return &Backend{
		log:       log,
		rpc:       wire.NewBackendClient(cc),
		store:     store,
		now:       time.Now,
		listeners: make(map[int]func(event.AuthStateChanged)),
	}
}

func (b *Backend) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	return b.authenticate(ctx, wire.SignUpMethod, email, password)
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	return b.authenticate(ctx, wire.SignInMethod, email, password)
}

func (b *Backend) authenticate(ctx context.Context, method, email, password string) (domain.Session, error) {
	out, err := b.rpc.Call(ctx, method, codec.NewRow(map[string]*structpb.Value{
		codec.ColEmail:    structpb.NewStringValue(email),
		codec.ColPassword: structpb.NewStringValue(password),
	}))
	if err != nil {
		return domain.Session{}, errors.FromGRPCError(err)
	}
	session, err := codec.RowToSession(out)
	if err != nil {
		return domain.Session{}, err
	}
	b.replaceSession(&session, event.SignedIn)
	return session, nil
}

// CurrentSession returns the signed in session, nil when there is none.
// A session close to its end is refreshed first; an expired one is dropped.
func (b *Backend) CurrentSession(ctx context.Context) (*domain.Session, error) {
	session, err := b.loadSession()
	if err != nil || session == nil {
		return nil, err
	}
	now := b.now()
	if session.Expired(now) {
		b.log.Info("Stored session expired", "user_id", session.User.ID)
		b.replaceSession(nil, event.SignedOut)
		return nil, nil
	}
	if at, ok := b.NextRefresh(); ok && !now.Before(at) {
		refreshed, err := b.Refresh(ctx)
		if err != nil {
			if stderrors.Is(err, errors.ErrBackendUnavailable) {
				// Still valid, the refresh worker will retry
				return session, nil
			}
			return nil, err
		}
		return &refreshed, nil
	}
	return session, nil
}

// Refresh trades the current token for a new one.
// A refusal from the backend ends the session, as an expiry would.
func (b *Backend) Refresh(ctx context.Context) (domain.Session, error) {
	session, err := b.loadSession()
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, errors.ErrNotAuthenticated
	}
	out, err := b.rpc.Call(ctx, wire.RefreshMethod, codec.NewRow(map[string]*structpb.Value{
		codec.ColAccessToken: structpb.NewStringValue(session.AccessToken),
	}))
	if err != nil {
		err = errors.FromGRPCError(err)
		if isUnauthenticated(err) {
			b.log.Warn("Session refused by the backend, signing out", "user_id", session.User.ID, "error", err)
			b.replaceSession(nil, event.SignedOut)
		}
		return domain.Session{}, err
	}
	refreshed, err := codec.RowToSession(out)
	if err != nil {
		return domain.Session{}, err
	}
	b.replaceSession(&refreshed, event.TokenRefreshed)
	return refreshed, nil
}

// NextRefresh is the moment the current token should be renewed,
// at refreshRatio of its lifetime. The lifetime is read from the token itself.
func (b *Backend) NextRefresh() (time.Time, bool) {
	b.mu.Lock()
	session := b.session
	b.mu.Unlock()
	if session == nil {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(session.AccessToken, &claims)
	if err != nil || claims.IssuedAt == nil {
		return session.ExpiresAt.Add(-time.Minute), true
	}
	lifetime := session.ExpiresAt.Sub(claims.IssuedAt.Time)
	return claims.IssuedAt.Add(time.Duration(float64(lifetime) * refreshRatio)), true
}

// OnAuthStateChange registers a listener called after every session change.
// Listeners run on the goroutine that changed the session.
func (b *Backend) OnAuthStateChange(listener func(event.AuthStateChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextListener
	b.nextListener++
	b.listeners[id] = listener
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// SignOut forgets the session locally. Tokens are stateless, the backend keeps nothing to revoke.
func (b *Backend) SignOut(_ context.Context) error {
	b.mu.Lock()
	b.session = nil
	b.loaded = true
	err := b.store.Clear()
	b.mu.Unlock()
	b.notify(event.AuthStateChanged{Change: event.SignedOut})
	return err
}

func (b *Backend) ListGroups(ctx context.Context) ([]domain.Group, error) {
	out, err := b.call(ctx, wire.ListGroupsMethod, codec.NewRow(nil))
	if err != nil {
		return nil, err
	}
	groups := make([]domain.Group, 0)
	for _, row := range codec.UnwrapRows(out) {
		stored, err := codec.RowToGroup(row)
		if err != nil {
			return nil, err
		}
		groups = append(groups, stored.Group)
	}
	return groups, nil
}

func (b *Backend) InsertGroup(ctx context.Context, group domain.NewGroup) (domain.Group, error) {
	out, err := b.call(ctx, wire.InsertGroupMethod, codec.NewGroupToRow(group))
	if err != nil {
		return domain.Group{}, err
	}
	stored, err := codec.RowToGroup(out)
	return stored.Group, err
}

func (b *Backend) ListMessages(ctx context.Context, groupID domain.GroupID) ([]domain.Message, error) {
	out, err := b.call(ctx, wire.ListMessagesMethod, groupRow(groupID))
	if err != nil {
		return nil, err
	}
	return rowsToMessages(out)
}

func (b *Backend) InsertMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error) {
	out, err := b.call(ctx, wire.InsertMessageMethod, codec.NewMessageToRow(message))
	if err != nil {
		return domain.Message{}, err
	}
	return codec.RowToMessage(out)
}

func (b *Backend) SearchMessages(ctx context.Context, groupID domain.GroupID, text string) ([]domain.Message, error) {
	in := groupRow(groupID)
	in.Fields[codec.ColQuery] = structpb.NewStringValue(text)
	out, err := b.call(ctx, wire.SearchMessagesMethod, in)
	if err != nil {
		return nil, err
	}
	return rowsToMessages(out)
}

// SubscribeMessages opens the insert feed of the messages table, every group included.
// It returns once the backend registered the subscription.
func (b *Backend) SubscribeMessages(ctx context.Context) (contract.Subscription, error) {
	authCtx, err := b.withToken(ctx)
	if err != nil {
		return nil, err
	}
	streamCtx, cancel := context.WithCancel(authCtx)
	stream, err := b.rpc.SubscribeMessages(streamCtx, codec.NewRow(nil))
	if err != nil {
		cancel()
		return nil, errors.FromGRPCError(err)
	}
	if _, err := stream.Header(); err != nil {
		cancel()
		return nil, errors.FromGRPCError(err)
	}
	return newSubscription(b.log, stream, cancel), nil
}

// call runs an authenticated unary call and maps the failure back to a sentinel.
func (b *Backend) call(ctx context.Context, method string, in *codec.Row) (*codec.Row, error) {
	authCtx, err := b.withToken(ctx)
	if err != nil {
		return nil, err
	}
	out, err := b.rpc.Call(authCtx, method, in)
	if err != nil {
		b.log.Debug("Backend call failed", "method", method, "error", err)
		return nil, errors.FromGRPCError(err)
	}
	return out, nil
}

func (b *Backend) withToken(ctx context.Context) (context.Context, error) {
	session, err := b.loadSession()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.ErrNotAuthenticated
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+session.AccessToken), nil
}

func (b *Backend) loadSession() (*domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		session, err := b.store.Load()
		if err != nil {
			return nil, err
		}
		b.session = session
		b.loaded = true
	}
	return b.session, nil
}

// replaceSession persists the new session then tells the listeners.
// A store failure is logged, the session stays usable for this run.
func (b *Backend) replaceSession(session *domain.Session, change event.AuthChange) {
	b.mu.Lock()
	b.session = session
	b.loaded = true
	var err error
	if session == nil {
		err = b.store.Clear()
	} else {
		err = b.store.Save(*session)
	}
	b.mu.Unlock()
	if err != nil {
		b.log.Error("Session not persisted", "change", change, "error", err)
	}
	b.notify(event.AuthStateChanged{Change: change, Session: session})
}

func (b *Backend) notify(change event.AuthStateChanged) {
	b.mu.Lock()
	listeners := lo.Values(b.listeners)
	b.mu.Unlock()
	for _, listener := range listeners {
		listener(change)
	}
}

func isUnauthenticated(err error) bool {
	return stderrors.Is(err, errors.ErrNotAuthenticated) ||
		stderrors.Is(err, errors.ErrSessionExpired) ||
		stderrors.Is(err, errors.ErrInvalidCredentials)
}

func groupRow(groupID domain.GroupID) *codec.Row {
	return codec.NewRow(map[string]*structpb.Value{
		codec.ColGroupID: codec.IDValue(int64(groupID)),
	})
}

func rowsToMessages(out *codec.Row) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	for _, row := range codec.UnwrapRows(out) {
		message, err := codec.RowToMessage(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
