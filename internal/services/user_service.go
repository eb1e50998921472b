package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/config"
	"github.com/foto-parana/contest-service/internal/events"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/utils"
	"github.com/foto-parana/contest-service/internal/validator"
)

type userService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	notifier       Notifier

	jwtConfig    config.JWTConfig
	uploadConfig config.UploadConfig
}

func NewUserService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	eventPublisher events.EventPublisher,
	notifier Notifier,
	jwtConfig config.JWTConfig,
	uploadConfig config.UploadConfig,
) UserService {
	return &userService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
		notifier:       notifier,
		jwtConfig:      jwtConfig,
		uploadConfig:   uploadConfig,
	}
}

// ===== REGISTRATION AND AUTHENTICATION =====

// Register enrolls a contestant or evaluator together with their
// registration PDF.
func (s *userService) Register(ctx context.Context, req *RegisterUserRequest, document FileUpload) (*models.UserOut, error) {
	s.logger.Info("Registering user", "email", req.Email, "user_type", req.UserType)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}
	if errs := s.validator.ValidateUserDocument(document.ContentType, document.Size, s.uploadConfig.MaxDocumentSize); errs.HasErrors() {
		return nil, errs
	}

	// Email and document number are both unique enrollment keys
	existing, err := s.repo.User().GetByEmailOrDocument(ctx, nil, req.Email, req.Document)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil && err == nil {
		return nil, ErrDuplicateUser
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Document: req.Document,
		Email:    req.Email,
		UserType: req.UserType,
		Category: req.Category,
		Address:  req.Address,
		File:     document.Data,
		Password: hash,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventUserRegistered, events.UserRegisteredEvent{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		UserType: string(user.UserType),
		Category: user.Category,
	}))

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)

	return models.NewUserOut(user), nil
}

// Login verifies credentials and issues a persisted session token
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*models.LoginResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	tokenString, expiresAt, err := utils.GenerateToken(user, s.jwtConfig.Secret, s.jwtConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &models.Token{
		Token:          tokenString,
		UserID:         user.ID,
		ExpirationDate: expiresAt,
	}
	if err := s.repo.Token().Create(ctx, nil, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	// Expired sessions pile up otherwise; a failed sweep must not block the
	// login itself.
	if purged, err := s.repo.Token().DeleteExpired(ctx, nil); err != nil {
		s.logger.Warn("Failed to purge expired tokens", "error", err)
	} else if purged > 0 {
		s.logger.Info("Purged expired tokens", "count", purged)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &models.LoginResponse{
		Token:          tokenString,
		TokenType:      "Bearer",
		ExpirationDate: expiresAt,
		User:           models.NewUserOut(user),
	}, nil
}

// ValidateSession verifies the token signature and that the session is still
// on record and unexpired.
func (s *userService) ValidateSession(ctx context.Context, token string) (*utils.TokenClaims, error) {
	claims, err := utils.ValidateToken(token, s.jwtConfig.Secret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	record, err := s.repo.Token().GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if time.Now().After(record.ExpirationDate) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// ===== ACCOUNT MANAGEMENT =====

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.UserOut, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return models.NewUserOut(user), nil
}

// Update applies only the fields present in the patch request
func (s *userService) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.UserOut, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Document != nil {
		updates["document"] = *req.Document
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.UserType != nil {
		updates["user_type"] = *req.UserType
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	if len(updates) > 0 {
		if err := s.repo.User().Update(ctx, nil, id, updates); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrUserNotFound
			}
			if repositories.IsDuplicateError(err) {
				return nil, ErrDuplicateUser
			}
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes the user and their sessions atomically
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Token().DeleteByUser(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.User().Delete(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id)

	return nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]*models.UserOut, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserOut(u))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &UserListResponse{
		Users: out,
		Total: total,
		Page:  page,
		Size:  len(out),
	}, nil
}

// Invite creates an evaluator account with a generated password and mails
// the credentials. The account is rolled back when the mail cannot be sent,
// so no orphaned invite ever blocks a later registration.
func (s *userService) Invite(ctx context.Context, req *InviteUserRequest, invitedBy uuid.UUID) (*models.UserOut, error) {
	s.logger.Info("Inviting user", "email", req.Email, "invited_by", invitedBy)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	existing, err := s.repo.User().GetByEmailOrDocument(ctx, nil, req.Email, req.Document)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil && err == nil {
		return nil, ErrDuplicateUser
	}

	password, err := generatePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Document: req.Document,
		Email:    req.Email,
		UserType: req.UserType,
		Category: req.Category,
		Password: hash,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create invited user: %w", err)
	}

	if err := s.notifier.SendInvite(ctx, user.Email, user.Name, password); err != nil {
		s.logger.Error("Failed to send invite mail, rolling back account",
			"user_id", user.ID, "error", err)
		// Hard delete: a soft-deleted row would keep the email and
		// document blocked for any later registration.
		if delErr := s.repo.User().HardDelete(ctx, nil, user.ID); delErr != nil {
			s.logger.Error("Failed to roll back invited user", "user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to send invite mail: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventUserInvited, events.UserInvitedEvent{
		UserID:    user.ID,
		Email:     user.Email,
		InvitedBy: invitedBy,
	}))

	s.logger.Info("User invited", "user_id", user.ID)

	return models.NewUserOut(user), nil
}

func (s *userService) GetFile(ctx context.Context, id uuid.UUID) ([]byte, error) {
	file, err := s.repo.User().GetFile(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user file: %w", err)
	}
	return file, nil
}

// ===== HELPERS =====

// publishEvent publishes best-effort; a broker failure never fails the request
func (s *userService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
