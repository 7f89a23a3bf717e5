package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/repository"
	"github.com/vineet-ld/masterdrive-api/internal/token"
)

// ErrNoChanges signals that an update request carried no effective change;
// the handler maps it to 304.
var ErrNoChanges = errors.New("no changes to apply")

// passwordHasher is the subset of auth.Hasher the usecases need.
type passwordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) error
}

// userMailer is the subset of email.Mailer the user flows send through.
// Defined here (point of use) so tests can inject a fake.
type userMailer interface {
	SendWelcome(ctx context.Context, name, to, verifyToken string)
	SendPasswordReset(ctx context.Context, name, to, code string)
	SendDetailsUpdated(ctx context.Context, name, to string)
}

type UserUsecase struct {
	users  repository.UserRepository
	ledger *token.Ledger
	hasher passwordHasher
	mailer userMailer
}

func NewUserUsecase(users repository.UserRepository, ledger *token.Ledger, hasher passwordHasher, mailer userMailer) *UserUsecase {
	return &UserUsecase{users: users, ledger: ledger, hasher: hasher, mailer: mailer}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates the user, issues a verification token, emails the welcome
// message, and signs the caller in with a fresh auth token. The plaintext
// password is hashed here, before persistence is ever invoked.
func (u *UserUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	verifyToken, err := u.ledger.Issue(ctx, user, domain.PurposeVerify)
	if err != nil {
		return nil, "", err
	}
	u.mailer.SendWelcome(ctx, user.Name, user.Email, verifyToken)

	authToken, err := u.ledger.Issue(ctx, user, domain.PurposeAuth)
	if err != nil {
		return nil, "", err
	}
	return user, authToken, nil
}

// Login checks credentials and, for verified users, issues a new auth token.
// Unknown email and wrong password are indistinguishable to the caller.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := u.findByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if !user.Verified {
		return nil, "", domain.ErrNotVerified
	}

	authToken, err := u.ledger.Issue(ctx, user, domain.PurposeAuth)
	if err != nil {
		return nil, "", err
	}
	return user, authToken, nil
}

// VerifyEmail marks the user verified. The verification gate has already
// consumed the presented token.
func (u *UserUsecase) VerifyEmail(ctx context.Context, user *domain.User) (*domain.User, error) {
	verified, err := u.users.MarkVerified(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	return verified, nil
}

type UpdateInput struct {
	Name     *string
	Password *string
}

// Update applies profile changes. A password change invalidates every
// outstanding auth token and returns a fresh one; otherwise the returned
// token is empty and the caller's token keeps working. ErrNoChanges is
// returned when the request is a no-op.
func (u *UserUsecase) Update(ctx context.Context, user *domain.User, input UpdateInput) (*domain.User, string, error) {
	changed := false
	passwordChanged := false

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != user.Name {
			user.Name = name
			changed = true
		}
	}
	if input.Password != nil {
		if u.hasher.Compare(*input.Password, user.PasswordHash) != nil {
			hash, err := u.hasher.Hash(*input.Password)
			if err != nil {
				return nil, "", err
			}
			user.PasswordHash = hash
			changed = true
			passwordChanged = true
		}
	}
	if !changed {
		return nil, "", ErrNoChanges
	}

	updated, err := u.users.Update(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("update user: %w", err)
	}

	var authToken string
	if passwordChanged {
		if err := u.ledger.RevokeAll(ctx, updated.ID, domain.PurposeAuth); err != nil {
			return nil, "", err
		}
		authToken, err = u.ledger.Issue(ctx, updated, domain.PurposeAuth)
		if err != nil {
			return nil, "", err
		}
	}

	u.mailer.SendDetailsUpdated(ctx, updated.Name, updated.Email)
	return updated, authToken, nil
}

// Logout revokes exactly the presented session token.
func (u *UserUsecase) Logout(ctx context.Context, userID, authToken string) error {
	return u.ledger.Revoke(ctx, userID, authToken)
}

// LogoutAll revokes every auth token the user holds; non-auth entries
// (pending verification or reset grants) are left untouched.
func (u *UserUsecase) LogoutAll(ctx context.Context, userID string) error {
	return u.ledger.RevokeAll(ctx, userID, domain.PurposeAuth)
}

// InitPasswordReset issues a one-time code and emails it to the user.
func (u *UserUsecase) InitPasswordReset(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	code, err := u.ledger.Issue(ctx, user, domain.PurposeTemp)
	if err != nil {
		return err
	}
	u.mailer.SendPasswordReset(ctx, user.Name, user.Email, code)
	return nil
}

// IssueResetToken mints the reset token once the one-time gate has consumed
// the temp code.
func (u *UserUsecase) IssueResetToken(ctx context.Context, user *domain.User) (string, error) {
	return u.ledger.Issue(ctx, user, domain.PurposeReset)
}

// ApplyPasswordReset sets the new password, revokes every outstanding token
// of every purpose, and signs the user back in.
func (u *UserUsecase) ApplyPasswordReset(ctx context.Context, user *domain.User, password string) (*domain.User, string, error) {
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}
	user.PasswordHash = hash

	updated, err := u.users.Update(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("update user: %w", err)
	}

	if err := u.ledger.RevokeEverything(ctx, updated.ID); err != nil {
		return nil, "", err
	}
	authToken, err := u.ledger.Issue(ctx, updated, domain.PurposeAuth)
	if err != nil {
		return nil, "", err
	}

	u.mailer.SendDetailsUpdated(ctx, updated.Name, updated.Email)
	return updated, authToken, nil
}

func (u *UserUsecase) findByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := u.hasher.Compare(password, user.PasswordHash); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
