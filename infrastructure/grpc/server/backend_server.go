package server

import (
	"context"
	"fmt"
	"groupchat/auth"
	"groupchat/codec"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"groupchat/infrastructure/grpc/wire"
	"groupchat/services"
	"groupchat/sink"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/grpc"
)

type BackendServer struct {
	authService          services.IAuthService
	chatService          services.IChatService
	connectionBufferSize int
	log                  *slog.Logger
}

var _ wire.BackendServer = (*BackendServer)(nil)

func NewBackendServer(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, connectionBufferSize int) *BackendServer {
	return &BackendServer{
		authService:          authService,
		chatService:          chatService,
		connectionBufferSize: connectionBufferSize,
		log:                  log,
	}
}

// SignUp registers the account and opens its first session.
func (s *BackendServer) SignUp(_ context.Context, in *codec.Row) (*codec.Row, error) {
	session, err := s.authService.Register(codec.OptionalString(in, codec.ColEmail), codec.OptionalString(in, codec.ColPassword))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.SessionToRow(session), nil
}

func (s *BackendServer) SignIn(_ context.Context, in *codec.Row) (*codec.Row, error) {
	session, err := s.authService.Login(codec.OptionalString(in, codec.ColEmail), codec.OptionalString(in, codec.ColPassword))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.SessionToRow(session), nil
}

func (s *BackendServer) Refresh(_ context.Context, in *codec.Row) (*codec.Row, error) {
	session, err := s.authService.Refresh(codec.OptionalString(in, codec.ColAccessToken))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.SessionToRow(session), nil
}

func (s *BackendServer) ListGroups(_ context.Context, _ *codec.Row) (*codec.Row, error) {
	groups, err := s.chatService.ListGroups()
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.Rows(lo.Map(groups, func(g domain.Group, _ int) *codec.Row {
		return codec.GroupToRow(codec.StoredGroup{Group: g})
	})), nil
}

// InsertGroup always records the caller as the owner, whatever created_by says.
func (s *BackendServer) InsertGroup(ctx context.Context, in *codec.Row) (*codec.Row, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errors.MapToGRPCError(errors.ErrNotAuthenticated)
	}
	newGroup := codec.RowToNewGroup(in)
	newGroup.CreatedBy = user.ID
	group, err := s.chatService.CreateGroup(newGroup)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.GroupToRow(codec.StoredGroup{Group: group, CreatedBy: user.ID}), nil
}

func (s *BackendServer) ListMessages(_ context.Context, in *codec.Row) (*codec.Row, error) {
	groupID, err := codec.Int(in, codec.ColGroupID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	messages, err := s.chatService.ListMessages(domain.GroupID(groupID))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.Rows(lo.Map(messages, func(m domain.Message, _ int) *codec.Row {
		return codec.MessageToRow(m)
	})), nil
}

// InsertMessage posts as the caller, the user_id of the payload is not trusted.
func (s *BackendServer) InsertMessage(ctx context.Context, in *codec.Row) (*codec.Row, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errors.MapToGRPCError(errors.ErrNotAuthenticated)
	}
	newMessage, err := codec.RowToNewMessage(in)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	newMessage.UserID = user.ID
	message, err := s.chatService.PostMessage(ctx, newMessage)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.MessageToRow(message), nil
}

func (s *BackendServer) SearchMessages(ctx context.Context, in *codec.Row) (*codec.Row, error) {
	groupID, err := codec.Int(in, codec.ColGroupID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	messages, err := s.chatService.SearchMessages(ctx, domain.GroupID(groupID), codec.OptionalString(in, codec.ColQuery))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return codec.Rows(lo.Map(messages, func(m domain.Message, _ int) *codec.Row {
		return codec.MessageToRow(m)
	})), nil
}

// SubscribeMessages pushes every inserted message row until the client goes away.
// It registers a dedicated sink in the registry; the deferred unsubscribe
// removes it whatever the way the stream ends.
// A group_id in the request restricts the feed to that group.
func (s *BackendServer) SubscribeMessages(in *codec.Row, stream grpc.ServerStreamingServer[codec.Row]) error {
	var filter *domain.GroupID
	if _, ok := in.GetFields()[codec.ColGroupID]; ok {
		groupID, err := codec.Int(in, codec.ColGroupID)
		if err != nil {
			return errors.MapToGRPCError(err)
		}
		filter = lo.ToPtr(domain.GroupID(groupID))
	}

	subscriberID := uuid.NewString()
	user, _ := auth.UserFromContext(stream.Context())
	channelSink := sink.NewChannelSink(s.log, s.connectionBufferSize)
	s.chatService.Subscribe(subscriberID, filter, channelSink)
	defer s.chatService.Unsubscribe(subscriberID)

	// Headers tell the client the subscription is live before any row arrives
	if err := stream.SendHeader(nil); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			s.log.Debug(fmt.Sprintf("Subscriber %s disconnected", subscriberID), "user_id", user.ID)
			return nil
		case evt := <-channelSink.Events:
			inserted, ok := evt.(event.MessageInserted)
			if !ok {
				continue
			}
			if err := stream.Send(codec.MessageToRow(inserted.Message)); err != nil {
				s.log.Error("failed to push row to stream",
					"subscriber_id", subscriberID,
					"user_id", user.ID,
					"error", err)
				return err
			}
		}
	}
}
