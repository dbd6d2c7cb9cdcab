package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// AuthService resolves identities and manages sessions. Identity here is an
// unverified email string: there are no passwords, and the session token is
// a handle on a stored session row, not an authentication proof.
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which the session token is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessionRepo repositories.SessionRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  24 * time.Hour, // Token valid for 24 hours
	}
}

// FindUserByEmail looks up a user by normalized email.
func (s *AuthService) FindUserByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: user with email %s", ErrNotFound, models.NormalizeEmail(email))
	}
	return user, nil
}

// Register creates a new user. It fails with ErrAlreadyExists if a user
// whose email normalizes to the same value is already present.
//
// The duplicate guard is a check-then-insert without transactional
// isolation, matching the store's lack of a uniqueness constraint. Two
// concurrent registrations of the same email can both pass the check.
func (s *AuthService) Register(name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email '%s' already registered", ErrAlreadyExists, models.NormalizeEmail(email))
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: failed to register user: %w", ErrPersistFailure, err)
	}
	return user, nil
}

// Login resolves the email to a user, creates a session row, and returns
// the user together with a signed token carrying the session ID.
func (s *AuthService) Login(email string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("%w: user with email %s", ErrNotFound, models.NormalizeEmail(email))
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		Email:     models.NormalizeEmail(user.Email),
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, "", fmt.Errorf("%w: failed to create session: %w", ErrPersistFailure, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":   session.ID,
		"email": session.Email,
		"name":  user.Name,
		"exp":   time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":   time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, tokenString, nil
}

// ValidateToken parses and validates a session token and checks that the
// session row still exists. Any failure along the way, including a storage
// error on the session lookup, is reported as an invalid session: a session
// we cannot read is a session that does not count as logged in.
func (s *AuthService) ValidateToken(tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, fmt.Errorf("invalid token: missing session id")
	}

	session, err := s.sessionRepo.GetByID(sid)
	if err != nil {
		return nil, fmt.Errorf("session not found or revoked: %w", err)
	}
	return session, nil
}

// Logout deletes the session row, revoking the token that points at it.
// Logging out a session that is already gone succeeds.
func (s *AuthService) Logout(sessionID string) error {
	if err := s.sessionRepo.Delete(sessionID); err != nil {
		// Treated the same as an absent session: the caller ends up
		// logged out either way.
		log.Printf("Failed to delete session %s: %v", sessionID, err)
	}
	return nil
}

// UpdateName changes a user's display name. It fails with ErrValidation if
// the new name is empty after trimming. Existing submissions keep the name
// snapshotted at submission time.
func (s *AuthService) UpdateName(userID, newName string) (*models.User, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}

	if err := s.userRepo.UpdateName(userID, newName); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: user with ID %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: failed to update name: %w", ErrPersistFailure, err)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user with ID %s", ErrNotFound, userID)
	}
	return user, nil
}
