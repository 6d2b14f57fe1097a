package app_test

import (
	"errors"
	"testing"
	"time"

	"finbro-chat/internal/app"
	"finbro-chat/internal/model"
)

type fakeUserStore struct {
	byEmail map[string]*model.User
	nextID  uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*model.User)}
}

func (s *fakeUserStore) Create(user *model.User) error {
	s.nextID++
	user.ID = s.nextID
	s.byEmail[user.Email] = user
	return nil
}

func (s *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	return s.byEmail[email], nil
}

func (s *fakeUserStore) GetByID(id uint) (*model.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func newAuthService() (*app.AuthService, *fakeUserStore) {
	store := newFakeUserStore()
	return app.NewAuthService(store, "secret", time.Hour), store
}

func TestRegisterAndLoginByEmail(t *testing.T) {
	svc, _ := newAuthService()

	registered, err := svc.Register(app.RegisterInput{
		Email:    "Ivan@Example.COM",
		Username: "ivan",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if registered.User.Email != "ivan@example.com" {
		t.Fatalf("email must be normalized, got %q", registered.User.Email)
	}
	if registered.Token == "" {
		t.Fatal("expected a token on register")
	}

	logged, err := svc.Login(app.LoginInput{Email: "ivan@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if logged.User.ID != registered.User.ID {
		t.Fatalf("login resolved a different account: %d != %d", logged.User.ID, registered.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	if _, err := svc.Register(app.RegisterInput{Email: "ivan@example.com", Username: "ivan", Password: "correct-horse"}); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	// same email under a different username is still a duplicate
	_, err := svc.Register(app.RegisterInput{Email: "ivan@example.com", Username: "другой", Password: "correct-horse"})
	if !errors.Is(err, app.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterSameUsernameDifferentEmails(t *testing.T) {
	svc, _ := newAuthService()

	if _, err := svc.Register(app.RegisterInput{Email: "first@example.com", Username: "ivan", Password: "correct-horse"}); err != nil {
		t.Fatalf("first Register err: %v", err)
	}
	// uniqueness is keyed on email alone
	if _, err := svc.Register(app.RegisterInput{Email: "second@example.com", Username: "ivan", Password: "correct-horse"}); err != nil {
		t.Fatalf("second Register err: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()

	if _, err := svc.Register(app.RegisterInput{Email: "ivan@example.com", Username: "ivan", Password: "correct-horse"}); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	_, err := svc.Login(app.LoginInput{Email: "ivan@example.com", Password: "wrong-horse!"})
	if !errors.Is(err, app.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Login(app.LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
	if !errors.Is(err, app.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestLoginByUsernameRejected(t *testing.T) {
	svc, _ := newAuthService()

	if _, err := svc.Register(app.RegisterInput{Email: "ivan@example.com", Username: "ivan", Password: "correct-horse"}); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	// the username is a display name, not a login identity
	_, err := svc.Login(app.LoginInput{Email: "ivan", Password: "correct-horse"})
	if !errors.Is(err, app.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for username login, got %v", err)
	}
}

func TestAuthValidatesInput(t *testing.T) {
	svc, _ := newAuthService()

	for _, input := range []app.RegisterInput{
		{Email: "", Username: "ivan", Password: "correct-horse"},
		{Email: "ivan@example.com", Username: "", Password: "correct-horse"},
		{Email: "ivan@example.com", Username: "ivan", Password: "short"},
	} {
		if _, err := svc.Register(input); !errors.Is(err, app.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}

	if _, err := svc.Login(app.LoginInput{Email: "", Password: "correct-horse"}); !errors.Is(err, app.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty email, got %v", err)
	}
}
