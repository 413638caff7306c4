package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/livros/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenIssuer = "livros"

var (
	// ErrInvalidCredentials is returned when email and password do not match a user
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for any bearer token that cannot be honoured
	ErrInvalidToken = errors.New("invalid token")
)

// dummyHash keeps the cost of a failed lookup close to a failed comparison
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("livros-dummy-password"), bcrypt.DefaultCost)

// TokenClaims are the claims carried by API bearer tokens
type TokenClaims struct {
	Device string `json:"device"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies per-device API tokens
type AuthService struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
}

// IssueToken checks the credentials and returns a signed token for deviceName
func (s *AuthService) IssueToken(ctx context.Context, email, password, deviceName string) (string, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	pat := models.PersonalAccessToken{
		UserID:  user.ID,
		Name:    deviceName,
		TokenID: uuid.NewString(),
	}
	if err := db.Create(&pat).Error; err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	now := time.Now()
	claims := TokenClaims{
		Device: deviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(user.ID, 10),
			ID:        pat.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns its token row with the user loaded
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.PersonalAccessToken, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	db := s.DB.WithContext(ctx)

	var pat models.PersonalAccessToken
	err = db.Preload("User").
		Where("token_id = ? AND user_id = ?", claims.ID, userID).
		First(&pat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if pat.User == nil {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	if err := db.Model(&pat).Update("last_used_at", &now).Error; err != nil {
		return nil, err
	}

	return &pat, nil
}

func (s *AuthService) keyFunc(*jwt.Token) (interface{}, error) {
	return s.Secret, nil
}

// RevokeToken deletes the token row so the bearer is no longer accepted
func (s *AuthService) RevokeToken(ctx context.Context, tokenID string) error {
	return s.DB.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&models.PersonalAccessToken{}).Error
}

// CreateUser stores a publisher with a bcrypt password hash
func CreateUser(ctx context.Context, db *gorm.DB, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Name: name, Email: email, Password: string(hash)}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
