package services

import (
	stderrors "errors"
	"fmt"
	"groupchat/auth"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/repositories"

	"github.com/golang-jwt/jwt/v5"
)

type IAuthService interface {
	Login(email, password string) (domain.Session, error)
	Register(email, password string) (domain.Session, error)
	Refresh(accessToken string) (domain.Session, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenIssuer) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(email, password string) (domain.Session, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		if stderrors.Is(err, errors.ErrInvalidPassword) {
			return domain.Session{}, err
		}
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	userID, err := s.userRepository.CreateUser(email, hashedPassword)
	if err != nil {
		return domain.Session{}, err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Open the first session
	return s.issue(domain.User{ID: userID, Email: email})
}

func (s *AuthService) Login(email, password string) (domain.Session, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Email: email, Password: password}); err != nil {
		return domain.Session{}, errors.ErrInvalidCredentials
	}

	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return domain.Session{}, errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.Session{}, errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	return s.issue(domain.User{ID: user.ID, Email: user.Email})
}

// Refresh trades a still valid token for a new one with a full lifetime.
// The account must still exist.
func (s *AuthService) Refresh(accessToken string) (domain.Session, error) {
	claims, err := s.tokens.ValidateToken(accessToken)
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		return domain.Session{}, errors.ErrSessionExpired
	}
	if err != nil {
		return domain.Session{}, errors.ErrNotAuthenticated
	}
	user, err := s.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		return domain.Session{}, errors.ErrNotAuthenticated
	}
	return s.issue(domain.User{ID: user.ID, Email: user.Email})
}

func (s *AuthService) issue(user domain.User) (domain.Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return domain.Session{}, errors.ErrTokenGeneration
	}
	return domain.Session{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}
