package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/apperr"
	"todo-api/internal/logger"
	"todo-api/internal/models"
)

const (
	MinPasswordLength = 8
	// bcrypt игнорирует всё после 72 байт
	MaxPasswordLength = 72
	MaxUsernameLength = 80
	MaxEmailLength    = 120
)

type AuthManager struct {
	users      UserRepository
	tokens     *TokenIssuer
	metrics    *Metrics
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthManager(users UserRepository, tokens *TokenIssuer, metrics *Metrics, bcryptCost int) *AuthManager {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthManager{
		users:      users,
		tokens:     tokens,
		metrics:    metrics,
		bcryptCost: bcryptCost,
	}
}

// Register создаёт пользователя; пароль хранится только в виде bcrypt-хеша
func (am *AuthManager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user, err := am.register(ctx, req)
	am.metrics.usersRegistered.WithLabelValues(statusLabel(err)).Inc()
	return user, err
}

func (am *AuthManager) register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	var fields []apperr.FieldError
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		fields = append(fields, apperr.FieldError{Field: "username", Message: fmt.Sprintf("must be 1-%d characters", MaxUsernameLength)})
	}
	if !looksLikeEmail(email) || utf8.RuneCountInString(email) > MaxEmailLength {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "is not a valid email address"})
	}
	if len(req.Password) < MinPasswordLength || len(req.Password) > MaxPasswordLength {
		fields = append(fields, apperr.FieldError{Field: "password", Message: fmt.Sprintf("must be %d-%d bytes long", MinPasswordLength, MaxPasswordLength)})
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), am.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := am.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			logger.Info(ctx, "Повторная регистрация email", "email", email)
			return nil, err
		}
		logger.Error(ctx, err, "Ошибка создания пользователя")
		return nil, err
	}

	logger.Info(ctx, "Пользователь зарегистрирован", "userID", user.ID)
	return user, nil
}

// SignIn проверяет пароль и выпускает пару токенов.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (am *AuthManager) SignIn(ctx context.Context, req models.SignInRequest) (models.TokenPair, error) {
	pair, err := am.signIn(ctx, req)
	am.metrics.signIns.WithLabelValues(statusLabel(err)).Inc()
	return pair, err
}

func (am *AuthManager) signIn(ctx context.Context, req models.SignInRequest) (models.TokenPair, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		var fields []apperr.FieldError
		if email == "" {
			fields = append(fields, apperr.FieldError{Field: "email", Message: "is required"})
		}
		if req.Password == "" {
			fields = append(fields, apperr.FieldError{Field: "password", Message: "is required"})
		}
		return models.TokenPair{}, &apperr.ValidationError{Fields: fields}
	}

	user, err := am.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// сравниваем с фиктивным хешем, чтобы время ответа не выдавало наличие email
			_ = bcrypt.CompareHashAndPassword(am.fakeHash(), []byte(req.Password))
			return models.TokenPair{}, fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)
		}
		return models.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Debug(ctx, "Неверный пароль", "userID", user.ID)
		return models.TokenPair{}, fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)
	}

	pair, err := am.tokens.Issue(user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}
	logger.Info(ctx, "Пользователь вошёл", "userID", user.ID)
	return pair, nil
}

// Refresh обменивает refresh-токен на новую пару
func (am *AuthManager) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	claims, err := am.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}
	user, err := am.lookup(ctx, claims.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}
	return am.tokens.Issue(user.ID)
}

// Authenticate проверяет access-токен и возвращает его владельца
func (am *AuthManager) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := am.tokens.Parse(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return am.lookup(ctx, claims.UserID)
}

// lookup: удалённый пользователь с живым токеном считается неавторизованным
func (am *AuthManager) lookup(ctx context.Context, userID int64) (*models.User, error) {
	user, err := am.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("user %d no longer exists: %w", userID, apperr.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (am *AuthManager) fakeHash() []byte {
	am.dummyOnce.Do(func() {
		am.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), am.bcryptCost)
	})
	return am.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// looksLikeEmail - грубая проверка; строгую делает слой валидации по схеме
func looksLikeEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\r\n")
}
