package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/foto-parana/contest-service/internal/config"
	"github.com/foto-parana/contest-service/internal/events"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/validator"
)

func newUserTestService(repo *mockRepository, notifier Notifier) (UserService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	jwtCfg := config.JWTConfig{Secret: "test-secret", TTL: time.Hour}
	uploadCfg := config.UploadConfig{
		MaxImageSize:    10 << 20,
		MaxDocumentSize: 10 << 20,
		CategoryAQuota:  1,
		CategoryBQuota:  3,
	}
	return NewUserService(repo, nil, logger, validator.New(), publisher, notifier, jwtCfg, uploadCfg), publisher
}

func pdfDocument() FileUpload {
	return FileUpload{
		Data:        []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		Size:        8,
	}
}

func registerRequest(email, document string) *RegisterUserRequest {
	return &RegisterUserRequest{
		Name:     "Ana Silva",
		Document: document,
		Email:    email,
		UserType: models.UserTypeParticipant,
		Password: "secret123",
		Category: "2",
		Address:  "Rua das Flores 10",
	}
}

func TestUserService_Register(t *testing.T) {
	repo := newMockRepository()
	service, publisher := newUserTestService(repo, NewMockNotifier())
	ctx := context.Background()

	out, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if out.Email != "ana@example.com" {
		t.Errorf("Expected email in response, got %q", out.Email)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(published))
	}
	if published[0].Type != events.EventUserRegistered {
		t.Errorf("Expected event type %q, got %q", events.EventUserRegistered, published[0].Type)
	}
	if published[0].Source != "contest-service" {
		t.Errorf("Expected source 'contest-service', got %q", published[0].Source)
	}

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := service.Register(ctx, registerRequest("ana@example.com", "87654321"), pdfDocument())
		if !errors.Is(err, ErrDuplicateUser) {
			t.Fatalf("Expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("duplicate document is rejected", func(t *testing.T) {
		_, err := service.Register(ctx, registerRequest("other@example.com", "12345678"), pdfDocument())
		if !errors.Is(err, ErrDuplicateUser) {
			t.Fatalf("Expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("non-PDF document is rejected", func(t *testing.T) {
		doc := pdfDocument()
		doc.ContentType = "image/jpeg"
		_, err := service.Register(ctx, registerRequest("new@example.com", "99999999"), doc)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("Expected validation errors, got %v", err)
		}
	})

	t.Run("invalid enrollment category is rejected", func(t *testing.T) {
		req := registerRequest("new@example.com", "99999999")
		req.Category = "6"
		_, err := service.Register(ctx, req, pdfDocument())
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("Expected validation errors, got %v", err)
		}
	})
}

func TestUserService_LoginAndSession(t *testing.T) {
	repo := newMockRepository()
	service, _ := newUserTestService(repo, NewMockNotifier())
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resp, err := service.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("Expected Bearer token type, got %q", resp.TokenType)
	}
	if resp.Token == "" {
		t.Fatal("Expected a session token")
	}

	claims, err := service.ValidateSession(ctx, resp.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("Expected claims email, got %q", claims.Email)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateSession(ctx, "not-a-token")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("token deleted server side", func(t *testing.T) {
		user, err := repo.User().GetByEmail(ctx, nil, "ana@example.com")
		if err != nil {
			t.Fatalf("Failed to load user: %v", err)
		}
		if err := repo.Token().DeleteByUser(ctx, nil, user.ID); err != nil {
			t.Fatalf("Failed to delete tokens: %v", err)
		}
		if _, err := service.ValidateSession(ctx, resp.Token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Expected ErrUnauthorized after revocation, got %v", err)
		}
	})
}

func TestUserService_Invite(t *testing.T) {
	repo := newMockRepository()
	notifier := NewMockNotifier()
	service, publisher := newUserTestService(repo, notifier)
	ctx := context.Background()

	inviter := repo.addUser(&models.User{Email: "chair@example.com", Document: "000001", UserType: models.UserTypeEvaluator})

	req := &InviteUserRequest{
		Name:     "New Judge",
		Document: "555555",
		Email:    "judge@example.com",
		UserType: models.UserTypeEvaluator,
		Category: "1",
	}

	out, err := service.Invite(ctx, req, inviter.ID)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if out.UserType != models.UserTypeEvaluator {
		t.Errorf("Expected evaluator account, got %q", out.UserType)
	}

	invites := notifier.SentInvites()
	if len(invites) != 1 {
		t.Fatalf("Expected 1 invite mail, got %d", len(invites))
	}
	if invites[0].To != "judge@example.com" {
		t.Errorf("Expected mail to judge@example.com, got %q", invites[0].To)
	}
	if invites[0].Password == "" {
		t.Error("Expected a generated password in the invite")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventUserInvited {
		t.Fatalf("Expected one user invited event, got %v", published)
	}

	// The mailed password must actually work.
	if _, err := service.Login(ctx, &LoginRequest{Email: "judge@example.com", Password: invites[0].Password}); err != nil {
		t.Fatalf("Login with invited password failed: %v", err)
	}
}

func TestUserService_Invite_MailFailureRollsBack(t *testing.T) {
	repo := newMockRepository()
	notifier := NewMockNotifier()
	notifier.FailWith(fmt.Errorf("smtp connection refused"))
	service, _ := newUserTestService(repo, notifier)
	ctx := context.Background()

	inviter := repo.addUser(&models.User{Email: "chair@example.com", Document: "000001", UserType: models.UserTypeEvaluator})

	req := &InviteUserRequest{
		Name:     "New Judge",
		Document: "555555",
		Email:    "judge@example.com",
		UserType: models.UserTypeEvaluator,
		Category: "1",
	}

	if _, err := service.Invite(ctx, req, inviter.ID); err == nil {
		t.Fatal("Expected invite to fail when mail cannot be sent")
	}

	// The account must not survive, or the address stays blocked forever.
	if _, err := repo.User().GetByEmail(ctx, nil, "judge@example.com"); err == nil {
		t.Fatal("Expected invited account to be rolled back")
	}

	// The rollback must remove the row outright. A soft-deleted row would
	// still hold the unique email/document slots and turn every later
	// attempt into a duplicate rejection.
	for _, u := range repo.users {
		if u.Email == "judge@example.com" {
			t.Fatal("Expected the rolled-back account to be gone, found a soft-deleted row")
		}
	}

	t.Run("the address is free for a retry", func(t *testing.T) {
		notifier.FailWith(nil)
		if _, err := service.Invite(ctx, req, inviter.ID); err != nil {
			t.Fatalf("Expected retry after mail failure to succeed, got %v", err)
		}
	})
}

func TestUserService_RegisterAfterDelete(t *testing.T) {
	repo := newMockRepository()
	service, _ := newUserTestService(repo, NewMockNotifier())
	ctx := context.Background()

	out, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := service.Delete(ctx, out.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// A deleted account frees its email and document for a fresh
	// enrollment; uniqueness only covers live rows.
	if _, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument()); err != nil {
		t.Fatalf("Expected re-registration after delete to succeed, got %v", err)
	}
}

func TestUserService_DeleteRemovesSessions(t *testing.T) {
	repo := newMockRepository()
	service, _ := newUserTestService(repo, NewMockNotifier())
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	resp, err := service.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := service.Delete(ctx, resp.User.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := service.GetByID(ctx, resp.User.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound after delete, got %v", err)
	}
	if _, err := service.ValidateSession(ctx, resp.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected session to be revoked, got %v", err)
	}
}

func TestUserService_GetFile(t *testing.T) {
	repo := newMockRepository()
	service, _ := newUserTestService(repo, NewMockNotifier())
	ctx := context.Background()

	out, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	data, err := service.GetFile(ctx, out.ID)
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("Expected stored PDF bytes, got %q", data)
	}
}

func TestUserService_LoginPurgesExpiredTokens(t *testing.T) {
	repo := newMockRepository()
	service, _ := newUserTestService(repo, NewMockNotifier())
	ctx := context.Background()

	out, err := service.Register(ctx, registerRequest("ana@example.com", "12345678"), pdfDocument())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	repo.mu.Lock()
	repo.tokens["stale-session"] = &models.Token{
		Token:          "stale-session",
		UserID:         out.ID,
		ExpirationDate: time.Now().Add(-time.Hour),
	}
	repo.tokens["live-session"] = &models.Token{
		Token:          "live-session",
		UserID:         out.ID,
		ExpirationDate: time.Now().Add(time.Hour),
	}
	repo.mu.Unlock()

	if _, err := service.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.tokens["stale-session"]; ok {
		t.Error("Expected the expired session to be purged on login")
	}
	if _, ok := repo.tokens["live-session"]; !ok {
		t.Error("Expected the unexpired session to survive the purge")
	}
}
