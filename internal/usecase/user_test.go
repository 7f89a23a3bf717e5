package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/token"
	"github.com/vineet-ld/masterdrive-api/internal/usecase"
)

// ---- fakes ----

// memUsers is a stateful in-memory UserRepository, enough to drive the user
// flows end to end without postgres.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*domain.User)}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	m.nextID++
	stored := *user
	stored.ID = fmt.Sprintf("user-%d", m.nextID)
	stored.CreatedOn = time.Now()
	m.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.PasswordHash = user.PasswordHash
	now := time.Now()
	stored.ModifiedOn = &now
	out := *stored
	return &out, nil
}

func (m *memUsers) MarkVerified(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	stored.Verified = true
	out := *stored
	return &out, nil
}

// memTokens mirrors the postgres token store semantics in memory.
type memTokens struct {
	mu      sync.Mutex
	entries map[string]domain.TokenEntry
}

func newMemTokens() *memTokens {
	return &memTokens{entries: make(map[string]domain.TokenEntry)}
}

func (s *memTokens) Add(_ context.Context, entry *domain.TokenEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Token] = *entry
	return nil
}

func (s *memTokens) Owner(_ context.Context, tok string, purpose domain.Purpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if !ok || e.Purpose != purpose {
		return "", domain.ErrTokenInvalid
	}
	return e.UserID, nil
}

func (s *memTokens) Claim(_ context.Context, tok string, purpose domain.Purpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if !ok || e.Purpose != purpose {
		return "", domain.ErrTokenInvalid
	}
	delete(s.entries, tok)
	return e.UserID, nil
}

func (s *memTokens) DeleteByPurpose(_ context.Context, userID string, purpose domain.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, e := range s.entries {
		if e.UserID == userID && e.Purpose == purpose {
			delete(s.entries, tok)
		}
	}
	return nil
}

func (s *memTokens) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, e := range s.entries {
		if e.UserID == userID {
			delete(s.entries, tok)
		}
	}
	return nil
}

func (s *memTokens) DeleteToken(_ context.Context, userID, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tok]
	if ok && e.UserID == userID && e.Purpose == domain.PurposeAuth {
		delete(s.entries, tok)
	}
	return nil
}

func (s *memTokens) CountByPurpose(_ context.Context, userID string, purpose domain.Purpose) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.UserID == userID && e.Purpose == purpose {
			n++
		}
	}
	return n, nil
}

// fakeHasher makes hashes deterministic so tests can follow them.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (fakeHasher) Compare(plain, hash string) error {
	if hash != "hashed:"+plain {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// recordingMailer captures what would have been sent.
type recordingMailer struct {
	welcomes   []string // verify tokens
	resetCodes []string
	updates    int
	added      int
}

func (m *recordingMailer) SendWelcome(_ context.Context, _, _, verifyToken string) {
	m.welcomes = append(m.welcomes, verifyToken)
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, _, _, code string) {
	m.resetCodes = append(m.resetCodes, code)
}

func (m *recordingMailer) SendDetailsUpdated(_ context.Context, _, _ string) { m.updates++ }

func (m *recordingMailer) SendAccountAdded(_ context.Context, _, _, _ string) { m.added++ }

// ---- helpers ----

const signingKey = "usecase-test-secret-at-least-32-chars"

type userFixture struct {
	uc     *usecase.UserUsecase
	users  *memUsers
	tokens *memTokens
	mailer *recordingMailer
	ledger *token.Ledger
}

func newUserFixture() *userFixture {
	users := newMemUsers()
	tokens := newMemTokens()
	mailer := &recordingMailer{}
	ledger := token.NewLedger(token.NewCodec([]byte(signingKey)), tokens, users)
	return &userFixture{
		uc:     usecase.NewUserUsecase(users, ledger, fakeHasher{}, mailer),
		users:  users,
		tokens: tokens,
		mailer: mailer,
		ledger: ledger,
	}
}

func (f *userFixture) register(t *testing.T, email string) (*domain.User, string) {
	t.Helper()
	user, authToken, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		Name:     "Vineet",
		Email:    email,
		Password: "Abc12345!",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user, authToken
}

func (f *userFixture) registerVerified(t *testing.T, email string) (*domain.User, string) {
	t.Helper()
	user, authToken := f.register(t, email)
	verified, err := f.uc.VerifyEmail(context.Background(), user)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	return verified, authToken
}

func (f *userFixture) countTokens(t *testing.T, userID string, purpose domain.Purpose) int {
	t.Helper()
	n, err := f.tokens.CountByPurpose(context.Background(), userID, purpose)
	if err != nil {
		t.Fatalf("CountByPurpose: %v", err)
	}
	return n
}

// ---- Register ----

func TestRegister_IssuesVerifyAndAuthTokens(t *testing.T) {
	f := newUserFixture()
	user, authToken := f.register(t, "Vineet@Example.COM ")

	if user.Email != "vineet@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if user.Verified {
		t.Error("new user must start unverified")
	}
	if got := f.countTokens(t, user.ID, domain.PurposeAuth); got != 1 {
		t.Errorf("auth tokens = %d, want 1", got)
	}
	if got := f.countTokens(t, user.ID, domain.PurposeVerify); got != 1 {
		t.Errorf("verify tokens = %d, want 1", got)
	}

	resolved, err := f.ledger.Resolve(context.Background(), authToken, domain.PurposeAuth)
	if err != nil {
		t.Fatalf("returned auth token does not resolve: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("token resolves to %q, want %q", resolved.ID, user.ID)
	}
}

func TestRegister_SendsWelcomeWithLiveVerifyToken(t *testing.T) {
	f := newUserFixture()
	user, _ := f.register(t, "a@x.com")

	if len(f.mailer.welcomes) != 1 {
		t.Fatalf("welcome emails = %d, want 1", len(f.mailer.welcomes))
	}
	resolved, err := f.ledger.Resolve(context.Background(), f.mailer.welcomes[0], domain.PurposeVerify)
	if err != nil {
		t.Fatalf("emailed verify token does not resolve: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("verify token resolves to %q, want %q", resolved.ID, user.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newUserFixture()
	f.register(t, "a@x.com")

	_, _, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		Name: "B", Email: "a@x.com", Password: "Abc12345!",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	f := newUserFixture()
	user, _ := f.register(t, "a@x.com")

	stored, err := f.users.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PasswordHash != "hashed:Abc12345!" {
		t.Errorf("stored hash = %q, want output of the hasher, not the plaintext", stored.PasswordHash)
	}
}

// ---- Login ----

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newUserFixture()
	f.registerVerified(t, "a@x.com")

	_, _, err1 := f.uc.Login(context.Background(), "missing@x.com", "Abc12345!")
	_, _, err2 := f.uc.Login(context.Background(), "a@x.com", "wrong-password")

	if !errors.Is(err1, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err1)
	}
	if !errors.Is(err2, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err2)
	}
}

func TestLogin_UnverifiedUserRejected(t *testing.T) {
	f := newUserFixture()
	f.register(t, "a@x.com")

	_, _, err := f.uc.Login(context.Background(), "a@x.com", "Abc12345!")
	if !errors.Is(err, domain.ErrNotVerified) {
		t.Errorf("err = %v, want ErrNotVerified", err)
	}
}

func TestLogin_IssuesAdditionalSession(t *testing.T) {
	f := newUserFixture()
	user, firstToken := f.registerVerified(t, "a@x.com")

	_, secondToken, err := f.uc.Login(context.Background(), "a@x.com", "Abc12345!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if secondToken == firstToken {
		t.Error("login must mint a fresh token, not reuse the old one")
	}
	if got := f.countTokens(t, user.ID, domain.PurposeAuth); got != 2 {
		t.Errorf("auth tokens = %d, want 2 (both sessions stay live)", got)
	}
}

func TestLogin_FailureIssuesNoToken(t *testing.T) {
	f := newUserFixture()
	user, _ := f.registerVerified(t, "a@x.com")
	before := f.countTokens(t, user.ID, domain.PurposeAuth)

	f.uc.Login(context.Background(), "a@x.com", "nope")

	if got := f.countTokens(t, user.ID, domain.PurposeAuth); got != before {
		t.Errorf("auth tokens = %d, want %d (failed login must not mint)", got, before)
	}
}

// ---- Update ----

func TestUpdate_NoEffectiveChange(t *testing.T) {
	f := newUserFixture()
	user, _ := f.registerVerified(t, "a@x.com")

	sameName := user.Name
	_, _, err := f.uc.Update(context.Background(), user, usecase.UpdateInput{Name: &sameName})
	if !errors.Is(err, usecase.ErrNoChanges) {
		t.Errorf("err = %v, want ErrNoChanges", err)
	}
	if f.mailer.updates != 0 {
		t.Error("no-op update must not send email")
	}
}

func TestUpdate_NameOnlyKeepsSessions(t *testing.T) {
	f := newUserFixture()
	user, authToken := f.registerVerified(t, "a@x.com")

	newName := "Renamed"
	updated, freshToken, err := f.uc.Update(context.Background(), user, usecase.UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", updated.Name)
	}
	if freshToken != "" {
		t.Errorf("token = %q, want empty for a name-only change", freshToken)
	}
	if _, err := f.ledger.Resolve(context.Background(), authToken, domain.PurposeAuth); err != nil {
		t.Errorf("existing session was revoked by a name change: %v", err)
	}
	if f.mailer.updates != 1 {
		t.Errorf("details-updated emails = %d, want 1", f.mailer.updates)
	}
}

func TestUpdate_PasswordChangeRevokesOtherSessions(t *testing.T) {
	f := newUserFixture()
	user, oldToken := f.registerVerified(t, "a@x.com")

	newPassword := "Xyz98765!"
	_, freshToken, err := f.uc.Update(context.Background(), user, usecase.UpdateInput{Password: &newPassword})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if freshToken == "" {
		t.Fatal("password change must return a fresh token")
	}
	if _, err := f.ledger.Resolve(context.Background(), oldToken, domain.PurposeAuth); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("old session still resolves after password change: %v", err)
	}
	if _, err := f.ledger.Resolve(context.Background(), freshToken, domain.PurposeAuth); err != nil {
		t.Errorf("fresh token does not resolve: %v", err)
	}
	if _, _, err := f.uc.Login(context.Background(), "a@x.com", newPassword); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestUpdate_SamePasswordIsNoChange(t *testing.T) {
	f := newUserFixture()
	user, _ := f.registerVerified(t, "a@x.com")

	same := "Abc12345!"
	_, _, err := f.uc.Update(context.Background(), user, usecase.UpdateInput{Password: &same})
	if !errors.Is(err, usecase.ErrNoChanges) {
		t.Errorf("err = %v, want ErrNoChanges for an identical password", err)
	}
}

// ---- Logout ----

func TestLogout_RevokesOnlyPresentedSession(t *testing.T) {
	f := newUserFixture()
	user, first := f.registerVerified(t, "a@x.com")
	_, second, err := f.uc.Login(context.Background(), "a@x.com", "Abc12345!")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.uc.Logout(context.Background(), user.ID, first); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.ledger.Resolve(context.Background(), first, domain.PurposeAuth); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Error("logged-out session still resolves")
	}
	if _, err := f.ledger.Resolve(context.Background(), second, domain.PurposeAuth); err != nil {
		t.Errorf("other session was revoked too: %v", err)
	}
}

func TestLogoutAll_LeavesNonAuthEntries(t *testing.T) {
	f := newUserFixture()
	user, _ := f.register(t, "a@x.com") // unverified: verify token still pending
	f.users.MarkVerified(context.Background(), user.ID)
	f.uc.Login(context.Background(), "a@x.com", "Abc12345!")

	if err := f.uc.LogoutAll(context.Background(), user.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if got := f.countTokens(t, user.ID, domain.PurposeAuth); got != 0 {
		t.Errorf("auth tokens = %d, want 0", got)
	}
	if got := f.countTokens(t, user.ID, domain.PurposeVerify); got != 1 {
		t.Errorf("verify tokens = %d, want 1 (must survive logout-all)", got)
	}
}

// ---- password reset ----

func TestInitPasswordReset_EmailsOneTimeCode(t *testing.T) {
	f := newUserFixture()
	user, _ := f.registerVerified(t, "a@x.com")

	if err := f.uc.InitPasswordReset(context.Background(), "A@X.com"); err != nil {
		t.Fatalf("InitPasswordReset: %v", err)
	}
	if len(f.mailer.resetCodes) != 1 {
		t.Fatalf("reset emails = %d, want 1", len(f.mailer.resetCodes))
	}
	resolved, err := f.ledger.Resolve(context.Background(), f.mailer.resetCodes[0], domain.PurposeTemp)
	if err != nil {
		t.Fatalf("emailed code does not resolve: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("code resolves to %q, want %q", resolved.ID, user.ID)
	}
}

func TestInitPasswordReset_UnknownEmail(t *testing.T) {
	f := newUserFixture()

	err := f.uc.InitPasswordReset(context.Background(), "nobody@x.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
	if len(f.mailer.resetCodes) != 0 {
		t.Error("no email must be sent for an unknown address")
	}
}

func TestApplyPasswordReset_RevokesEverything(t *testing.T) {
	f := newUserFixture()
	user, oldToken := f.registerVerified(t, "a@x.com")
	resetToken, err := f.uc.IssueResetToken(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}

	updated, freshToken, err := f.uc.ApplyPasswordReset(context.Background(), user, "NewPass99!")
	if err != nil {
		t.Fatalf("ApplyPasswordReset: %v", err)
	}
	if _, err := f.ledger.Resolve(context.Background(), oldToken, domain.PurposeAuth); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Error("pre-reset session survived")
	}
	if _, err := f.ledger.Resolve(context.Background(), resetToken, domain.PurposeReset); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Error("reset token survived its own use")
	}
	if _, err := f.ledger.Resolve(context.Background(), freshToken, domain.PurposeAuth); err != nil {
		t.Errorf("fresh token does not resolve: %v", err)
	}
	if _, _, err := f.uc.Login(context.Background(), updated.Email, "NewPass99!"); err != nil {
		t.Errorf("login with reset password: %v", err)
	}
}
