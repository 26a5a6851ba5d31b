package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/repositories"
)

type AuthService struct {
	Users     repositories.UserRepository
	JWTSecret []byte
	TokenTTL  time.Duration
	Log       *logrus.Logger
}

type Credentials struct {
	Login    string
	Password string
}

type Registration struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Login verifies credentials and issues a signed bearer token. Lookup misses
// and bad passwords are indistinguishable to the caller.
func (s AuthService) Login(ctx context.Context, creds Credentials) (string, models.User, error) {
	login := strings.TrimSpace(creds.Login)
	if login == "" || creds.Password == "" {
		return "", models.User{}, domain.ValidationError{Msg: "login and password are required"}
	}

	user, err := s.Users.GetByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, domain.ForbiddenError{Msg: "invalid credentials"}
		}
		return "", models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return "", models.User{}, domain.ForbiddenError{Msg: "invalid credentials"}
	}
	if user.Status != "active" {
		return "", models.User{}, domain.ForbiddenError{Msg: "account disabled"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", models.User{}, err
	}

	s.Log.WithFields(logrus.Fields{"user_id": user.ID}).Info("user logged in")
	return token, user, nil
}

func (s AuthService) Register(ctx context.Context, reg Registration) (models.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	if reg.Username == "" || reg.Email == "" {
		return models.User{}, domain.ValidationError{Msg: "username and email are required"}
	}
	if len(reg.Password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	taken, err := s.Users.ExistsByEmailOrUsername(ctx, reg.Email, reg.Username)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email or username already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.QueryError{Op: "hash password", Err: err}
	}

	user, err := s.Users.Create(ctx, models.User{
		Name:         reg.Name,
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleDeveloper.String(),
		Status:       "active",
	})
	if err != nil {
		return models.User{}, err
	}

	s.Log.WithFields(logrus.Fields{"user_id": user.ID}).Info("user registered")
	return user, nil
}

// PrincipalFromToken validates a bearer token and rebuilds the principal from
// its claims. The store is not consulted per request.
func (s AuthService) PrincipalFromToken(tokenString string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, domain.ForbiddenError{Msg: "invalid token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ForbiddenError{Msg: "invalid token"}
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return domain.Principal{}, domain.ForbiddenError{Msg: "invalid token"}
	}
	roleName, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return domain.Principal{}, domain.ForbiddenError{Msg: "invalid token"}
	}

	return domain.Principal{ID: int64(rawID), Role: role}, nil
}

func (s AuthService) Me(ctx context.Context, principal domain.Principal) (models.User, error) {
	if principal.Anonymous {
		return models.User{}, domain.ForbiddenError{Msg: "authentication required"}
	}
	return s.Users.GetByID(ctx, principal.ID)
}

func (s AuthService) issueToken(user models.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", domain.QueryError{Op: "sign token", Err: err}
	}
	return signed, nil
}
