package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/coloby/coloby/internal/domain"
)

var tracer = otel.Tracer("auth")

// UserResolver provisions/looks up the identity row behind a token.
type UserResolver interface {
	GetOrCreate(ctx context.Context, user domain.User) (domain.User, error)
}

// AuthService validates bearer tokens issued by the identity collaborator
// and resolves them to local user rows. Resolved identities are cached per
// token so hot connections skip the database.
type AuthService struct {
	config domain.Config
	users  UserResolver
	cache  *cache.Cache
}

func NewAuthService(config domain.Config, users UserResolver) *AuthService {
	return &AuthService{
		config: config,
		users:  users,
		cache:  cache.New(10*time.Minute, 15*time.Minute),
	}
}

type AuthResult struct {
	User domain.User
}

func (s *AuthService) AuthToken(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	if cached, found := s.cache.Get(token); found {
		return &AuthResult{User: cached.(domain.User)}, nil
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, domain.PermissionDeniedError{Reason: "invalid token"}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, domain.PermissionDeniedError{Reason: "invalid token claims"}
	}

	username, _ := claims["sub"].(string)
	if username == "" {
		err := fmt.Errorf("token has no subject")
		span.RecordError(err)
		return nil, domain.PermissionDeniedError{Reason: "invalid token claims"}
	}
	email, _ := claims["email"].(string)

	user, err := s.users.GetOrCreate(ctx, domain.User{
		Username: username,
		Email:    email,
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "AuthService.AuthToken: user resolution failed"))
		return nil, err
	}

	s.cache.Set(token, user, cache.DefaultExpiration)

	return &AuthResult{User: user}, nil
}
