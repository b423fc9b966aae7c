package services

import (
	"groupchat/auth"
	"groupchat/errors"
	"groupchat/mocks"
	"groupchat/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const secret = "test-secret"

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, auth.NewTokenIssuer(secret, 24*time.Hour))

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		email := "test@example.com"
		password := "ComplexPass123!"
		expectedUserID := "user-uuid"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(email, gomock.Not(password)).
			Return(expectedUserID, nil).
			Times(1)

		session, err := svc.Register(email, password)

		req.NoError(err)
		req.NotEmpty(session.AccessToken)
		req.Equal(expectedUserID, session.User.ID)
		req.Equal(email, session.User.Email)
		req.True(session.ExpiresAt.After(time.Now()))
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register("test@example.com", "simplesimplesimple")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(session.AccessToken)
	})

	t.Run("should fail when email is malformed", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("not-an-email", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrInvalidPayload)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		email := "duplicate@example.com"

		mockRepo.EXPECT().
			CreateUser(email, gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(email, "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenIssuer(secret, 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"
		password := "Secret123456!"

		hashedPassword, err := auth.HashPassword(password)
		req.NoError(err)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Email:        email,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByEmail(email).
			Return(storedUser, nil).
			Times(1)

		session, err := svc.Login(email, password)
		req.NoError(err)

		claims, err := tokens.ValidateToken(session.AccessToken)
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
		req.Equal(email, claims.Email)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"

		hashedPassword, err := auth.HashPassword("CorrectPassword123!")
		req.NoError(err)

		mockRepo.EXPECT().
			GetUserByEmail(email).
			Return(repositories.User{Email: email, PasswordHash: hashedPassword}, nil).
			Times(1)

		_, err = svc.Login(email, "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByEmail("unknown@example.com").
			Return(repositories.User{}, errors.ErrInvalidCredentials).
			Times(1)

		_, err := svc.Login("unknown@example.com", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenIssuer(secret, time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should issue a new session for a valid token", func(t *testing.T) {
		req := require.New(t)
		token, _, err := tokens.GenerateToken("uuid-1", "a@example.com")
		req.NoError(err)

		mockRepo.EXPECT().GetUserByID("uuid-1").
			Return(repositories.User{ID: "uuid-1", Email: "a@example.com"}, nil)

		session, err := svc.Refresh(token)
		req.NoError(err)
		req.Equal("uuid-1", session.User.ID)
		req.NotEmpty(session.AccessToken)
	})

	t.Run("should refuse a token signed with another secret", func(t *testing.T) {
		req := require.New(t)
		token, _, err := auth.NewTokenIssuer("other", time.Hour).GenerateToken("uuid-1", "a@example.com")
		req.NoError(err)

		_, err = svc.Refresh(token)
		req.ErrorIs(err, errors.ErrNotAuthenticated)
	})

	t.Run("should refuse an expired token", func(t *testing.T) {
		req := require.New(t)
		token, _, err := auth.NewTokenIssuer(secret, -time.Minute).GenerateToken("uuid-1", "a@example.com")
		req.NoError(err)

		_, err = svc.Refresh(token)
		req.ErrorIs(err, errors.ErrSessionExpired)
	})

	t.Run("should refuse a deleted account", func(t *testing.T) {
		req := require.New(t)
		token, _, err := tokens.GenerateToken("uuid-2", "b@example.com")
		req.NoError(err)
		mockRepo.EXPECT().GetUserByID("uuid-2").Return(repositories.User{}, errors.ErrInvalidCredentials)

		_, err = svc.Refresh(token)
		req.ErrorIs(err, errors.ErrNotAuthenticated)
	})
}
