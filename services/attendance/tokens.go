package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTokenTTL is how long an issued check-in token stays valid unless
// the lecturer supplies an explicit expiry.
const DefaultTokenTTL = 4 * time.Hour

const maxTokenLength = 16

// TokenService issues and resolves check-in tokens. Expiry is applied
// lazily on every resolve; there is no background sweep.
type TokenService struct {
	orm *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewTokenService creates a TokenService over the provided ORM handle.
func NewTokenService(orm *gorm.DB, ttl time.Duration) (*TokenService, error) {
	if orm == nil {
		return nil, errors.New("orm is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{orm: orm, ttl: ttl, now: time.Now}, nil
}

// NormalizeTokenValue canonicalises a lecturer-chosen token value and
// rejects values that are empty, too long, or not alphanumeric.
func NormalizeTokenValue(value string) (string, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return "", errors.New("token value is required")
	}
	if len(value) > maxTokenLength {
		return "", fmt.Errorf("token value longer than %d characters", maxTokenLength)
	}
	for _, r := range value {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("token value contains invalid character %q", r)
		}
	}
	return value, nil
}

// Issue creates a new active token for the course and revokes any token
// previously active for it, so at most one token per course accepts
// check-ins at a time. A zero generatedAt means now; a zero expiresAt
// defaults to generatedAt plus the service TTL.
func (s *TokenService) Issue(ctx context.Context, courseID uuid.UUID, value string, generatedAt, expiresAt time.Time) (Token, error) {
	if courseID == uuid.Nil {
		return Token{}, errors.New("course id is required")
	}

	value, err := NormalizeTokenValue(value)
	if err != nil {
		return Token{}, err
	}

	if generatedAt.IsZero() {
		generatedAt = s.now()
	}
	if expiresAt.IsZero() {
		expiresAt = generatedAt.Add(s.ttl)
	}

	model := tokenModel{
		ID:          uuid.New(),
		CourseID:    courseID,
		Value:       value,
		GeneratedAt: generatedAt,
		ExpiresAt:   expiresAt,
		IsActive:    expiresAt.After(s.now()),
	}

	err = s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tokenModel{}).
			Where("course_id = ? AND is_active = ?", courseID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Token{}, ErrTokenTaken
		}
		return Token{}, err
	}

	return model.toToken(), nil
}

// Resolve looks up an active token by value. A token whose expiry has
// passed has its stored active flag forced off before ErrTokenExpired is
// returned; revoked or unknown values yield ErrTokenNotFound.
func (s *TokenService) Resolve(ctx context.Context, value string) (Token, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return Token{}, ErrTokenNotFound
	}

	var model tokenModel
	err := s.orm.WithContext(ctx).Where("value = ?", value).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Token{}, ErrTokenNotFound
		}
		return Token{}, err
	}

	if model.toToken().Expired(s.now()) {
		if model.IsActive {
			if err := s.orm.WithContext(ctx).Model(&tokenModel{}).
				Where("id = ?", model.ID).
				Update("is_active", false).Error; err != nil {
				return Token{}, err
			}
		}
		return Token{}, ErrTokenExpired
	}

	if !model.IsActive {
		return Token{}, ErrTokenNotFound
	}

	return model.toToken(), nil
}

// Deactivate revokes a token explicitly, ahead of its expiry.
func (s *TokenService) Deactivate(ctx context.Context, value string) error {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return ErrTokenNotFound
	}

	result := s.orm.WithContext(ctx).Model(&tokenModel{}).
		Where("value = ?", value).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
