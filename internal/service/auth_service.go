package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "focussync/internal/errors"
	"focussync/internal/model"
	"focussync/internal/repository"
)

const (
	tokenIssuer       = "focussync"
	minPasswordLength = 6
)

var (
	errEmailTaken      = apperrors.Conflict("email_exists", "email already registered", nil)
	errBadCredentials  = apperrors.Unauthorized("invalid email or password")
	errUserLookup      = apperrors.Internal("failed to query user")
	errMalformedToken  = apperrors.Unauthorized("invalid token")
	errAccountNotFound = apperrors.Unauthorized("account no longer exists")
)

type AuthService struct {
	users  *repository.UserRepository
	secret []byte
	ttl    time.Duration
}

func NewAuthService(users *repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(jwtSecret), ttl: tokenTTL}
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type credentials struct {
	email    string
	password string
}

func newCredentials(email, password string) credentials {
	return credentials{email: strings.ToLower(strings.TrimSpace(email)), password: password}
}

func (c credentials) validForSignup() *apperrors.APIError {
	switch {
	case c.email == "" || !strings.Contains(c.email, "@"):
		return apperrors.BadRequest("invalid_email", "a valid email is required")
	case len(c.password) < minPasswordLength:
		return apperrors.BadRequest("invalid_password", "password must be at least 6 characters")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, *apperrors.APIError) {
	creds := newCredentials(email, password)
	if apiErr := creds.validForSignup(); apiErr != nil {
		return nil, apiErr
	}

	switch _, err := s.users.GetByEmail(ctx, creds.email); {
	case err == nil:
		return nil, errEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, errUserLookup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to secure password")
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        creds.email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup can win the race past the lookup above.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, errEmailTaken
		}
		return nil, apperrors.Internal("failed to create user")
	}
	return s.grant(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, *apperrors.APIError) {
	creds := newCredentials(email, password)
	if creds.email == "" || creds.password == "" {
		return nil, apperrors.BadRequest("invalid_credentials", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, creds.email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, errBadCredentials
	case err != nil:
		return nil, errUserLookup
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.password)) != nil {
		return nil, errBadCredentials
	}
	return s.grant(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, errAccountNotFound
	case err != nil:
		return nil, errUserLookup
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) ParseToken(raw string) (string, *apperrors.APIError) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.signingKey,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", errMalformedToken
	}
	if claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid token subject")
	}
	return claims.Subject, nil
}

func (s *AuthService) signingKey(*jwt.Token) (interface{}, error) {
	return s.secret, nil
}

func (s *AuthService) grant(user *model.User) (*AuthResult, *apperrors.APIError) {
	issued := time.Now().UTC()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
	}).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token")
	}

	reply := *user
	reply.PasswordHash = ""
	return &AuthResult{Token: token, User: reply}, nil
}
