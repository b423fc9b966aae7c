package services

import (
	"context"
	"fmt"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"groupchat/moderation"
	"groupchat/repositories"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type IChatService interface {
	ListGroups() ([]domain.Group, error)
	CreateGroup(group domain.NewGroup) (domain.Group, error)
	ListMessages(groupID domain.GroupID) ([]domain.Message, error)
	PostMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error)
	SearchMessages(ctx context.Context, groupID domain.GroupID, text string) ([]domain.Message, error)
	Subscribe(subscriberID string, filter *domain.GroupID, sink contract.EventSink)
	Unsubscribe(subscriberID string)
}

type groupRequest struct {
	Name string `validate:"required,max=100"`
}

type messageRequest struct {
	Content string `validate:"required"`
	UserID  string `validate:"required"`
	GroupID int64  `validate:"gt=0"`
}

type ChatService struct {
	log              *slog.Logger
	groups           repositories.IGroupRepository
	messages         repositories.IMessageRepository
	users            repositories.IUserRepository
	index            repositories.IMessageIndex
	moderator        *moderation.Moderator
	registry         contract.IRegistry
	events           chan<- event.DomainEvent
	maxContentLength int
	searchLimit      int
	now              func() time.Time
}

func NewChatService(
	log *slog.Logger,
	groups repositories.IGroupRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	index repositories.IMessageIndex,
	moderator *moderation.Moderator,
	registry contract.IRegistry,
	events chan<- event.DomainEvent,
	maxContentLength, searchLimit int,
) *ChatService {
	return &ChatService{
		log:              log,
		groups:           groups,
		messages:         messages,
		users:            users,
		index:            index,
		moderator:        moderator,
		registry:         registry,
		events:           events,
		maxContentLength: maxContentLength,
		searchLimit:      searchLimit,
		now:              time.Now,
	}
}

func (s *ChatService) ListGroups() ([]domain.Group, error) {
	return s.groups.ListGroups()
}

// CreateGroup does not check name uniqueness, two groups may share a name.
func (s *ChatService) CreateGroup(group domain.NewGroup) (domain.Group, error) {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return domain.Group{}, errors.ErrEmptyGroupName
	}
	if err := validate.Struct(groupRequest{Name: group.Name}); err != nil {
		return domain.Group{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	created, err := s.groups.CreateGroup(group, s.now())
	if err != nil {
		return domain.Group{}, err
	}
	s.log.Info("Group created", "group_id", created.ID, "created_by", group.CreatedBy)
	return created, nil
}

// ListMessages returns the history of a group with the author emails joined.
func (s *ChatService) ListMessages(groupID domain.GroupID) ([]domain.Message, error) {
	messages, err := s.messages.GetMessages(groupID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(messages), nil
}

// PostMessage stores a message and publishes it to the realtime subscribers.
// The content is censored before being stored; indexing failures are only logged.
func (s *ChatService) PostMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error) {
	message.Content = strings.TrimSpace(message.Content)
	if message.Content == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if message.UserID == "" {
		return domain.Message{}, errors.ErrNotAuthenticated
	}
	req := messageRequest{Content: message.Content, UserID: message.UserID, GroupID: int64(message.GroupID)}
	if err := validate.Struct(req); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if s.maxContentLength > 0 && len([]rune(message.Content)) > s.maxContentLength {
		return domain.Message{}, fmt.Errorf("%w: content longer than %d characters",
			errors.ErrInvalidPayload, s.maxContentLength)
	}
	if _, err := s.groups.GetGroup(message.GroupID); err != nil {
		return domain.Message{}, err
	}

	if s.moderator != nil {
		censored, found := s.moderator.Censor(message.Content)
		if len(found) > 0 {
			s.log.Debug("Message censored", "group_id", message.GroupID, "words", len(found))
		}
		message.Content = censored
	}

	stored, err := s.messages.StoreMessage(message, s.now())
	if err != nil {
		return domain.Message{}, err
	}
	stored.AuthorEmail = s.authorEmail(stored.UserID)

	if err := s.index.Index(stored); err != nil {
		s.log.Warn("Message not indexed", "message_id", stored.ID, "error", err)
	}

	select {
	case s.events <- event.MessageInserted{Message: stored}:
	case <-ctx.Done():
		s.log.Warn("Message stored but not published", "message_id", stored.ID, "error", ctx.Err())
	}
	return stored, nil
}

// SearchMessages runs a full-text search in one group, best match first.
func (s *ChatService) SearchMessages(ctx context.Context, groupID domain.GroupID, text string) ([]domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty search", errors.ErrInvalidPayload)
	}
	ids, err := s.index.Search(ctx, groupID, text, s.searchLimit)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	for _, id := range ids {
		message, err := s.messages.GetMessage(id)
		if err != nil {
			s.log.Warn("Indexed message not found", "message_id", id, "error", err)
			continue
		}
		messages = append(messages, message)
	}
	return s.withAuthors(messages), nil
}

func (s *ChatService) Subscribe(subscriberID string, filter *domain.GroupID, sink contract.EventSink) {
	s.registry.Subscribe(subscriberID, filter, sink)
	s.log.Debug("Subscriber registered", "subscriber_id", subscriberID, "subscribers", s.registry.Count())
}

func (s *ChatService) Unsubscribe(subscriberID string) {
	s.registry.Unsubscribe(subscriberID)
	s.log.Debug("Subscriber removed", "subscriber_id", subscriberID)
}

// withAuthors resolves every distinct author once.
func (s *ChatService) withAuthors(messages []domain.Message) []domain.Message {
	emails := make(map[string]string)
	for _, userID := range lo.Uniq(lo.Map(messages, func(m domain.Message, _ int) string { return m.UserID })) {
		emails[userID] = s.authorEmail(userID)
	}
	return lo.Map(messages, func(m domain.Message, _ int) domain.Message {
		m.AuthorEmail = emails[m.UserID]
		return m
	})
}

func (s *ChatService) authorEmail(userID string) string {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		s.log.Warn("Author not found", "user_id", userID, "error", err)
		return ""
	}
	return user.Email
}
