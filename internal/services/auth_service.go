package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Failures of the auth collaborator. Their texts are what TranslateAuthError matches.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAlreadyRegistered  = errors.New("user already registered")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
)

const minPasswordLength = 6

// AuthEventType identifies a session change.
type AuthEventType string

const (
	EventSignedIn  AuthEventType = "SIGNED_IN"
	EventSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent is delivered to subscribers on every session change.
type AuthEvent struct {
	Type    AuthEventType
	Account *models.Account
}

// AuthResult is the outcome of a successful sign-in or sign-up.
type AuthResult struct {
	Account *models.Account `json:"account"`
	Token   string          `json:"token"`
}

// subscriberBuffer is large enough that a subscriber reacting to an event by
// signing out never blocks the emitter.
const subscriberBuffer = 16

// AuthService handles credentials and the current session of the shopper.
type AuthService struct {
	accounts   repositories.AccountRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid

	mu          sync.Mutex
	current     *models.Account
	subscribers map[int]chan AuthEvent
	nextSub     int
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts repositories.AccountRepository, jwtSecret string) *AuthService {
	return &AuthService{
		accounts:    accounts,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  24 * time.Hour,
		subscribers: make(map[int]chan AuthEvent),
	}
}

// Subscribe returns a channel of session changes and a function that ends the subscription.
func (s *AuthService) Subscribe() (<-chan AuthEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan AuthEvent, subscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// emit must be called with s.mu held.
func (s *AuthService) emit(ev AuthEvent) {
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			log.Printf("auth: subscriber %d is not keeping up, dropping %s", id, ev.Type)
		}
	}
}

// SignUp registers an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password, username string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if existing, err := s.accounts.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrAlreadyRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &models.Account{
		Email:    email,
		Username: strings.TrimSpace(username),
		Password: string(hashedPassword),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}
	return s.startSession(account)
}

// SignIn checks the credentials and starts a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(account)
}

func (s *AuthService) startSession(account *models.Account) (*AuthResult, error) {
	token, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = account
	s.emit(AuthEvent{Type: EventSignedIn, Account: account})
	return &AuthResult{Account: account, Token: token}, nil
}

// SignOut ends the current session. Signing out without a session is a no-op.
func (s *AuthService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	s.current = nil
	s.emit(AuthEvent{Type: EventSignedOut})
	return nil
}

// Current returns the signed-in account, or nil.
func (s *AuthService) Current() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *AuthService) issueToken(account *models.Account) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": account.ID,
		"email":   account.Email,
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
