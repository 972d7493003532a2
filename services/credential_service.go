package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"codearena/models"
	"codearena/progression"
	"codearena/utils"
)

const (
	minUsernameLen    = 3
	maxUsernameLen    = 20
	minPasswordLen    = 6
	maxPasswordBytes  = 72 // bcrypt ignores anything longer
	resetCodeLifetime = 15 * time.Minute
)

var resetCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// AuthResult is a freshly issued session plus the public user it binds.
type AuthResult struct {
	Token     string            `json:"-"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      models.PublicUser `json:"user"`
}

// CredentialService registers and authenticates users, issues session
// tokens and runs the password reset flow.
type CredentialService struct {
	users    UserStore
	progress *ProgressionService
	tokens   *utils.JWTManager
	mailer   utils.Mailer
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialService(users UserStore, progress *ProgressionService, tokens *utils.JWTManager, mailer utils.Mailer) *CredentialService {
	if mailer == nil {
		mailer = utils.LogMailer{}
	}
	return &CredentialService{
		users:    users,
		progress: progress,
		tokens:   tokens,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Register creates an account under a suffixed copy of the requested
// username and signs the new user in.
func (s *CredentialService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = utils.NormalizeEmail(email)

	if username == "" || email == "" || password == "" {
		return nil, validation("All fields are required")
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return nil, validation("Username must be 3-20 characters long")
	}
	if !utils.IsValidEmail(email) {
		return nil, validation("Please provide a valid email")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	stored, err := utils.ModifiedUsername(username)
	if err != nil {
		return nil, internal("generate username", err)
	}

	// The unique index still backstops two registrations racing past this.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, &ConflictError{Message: "Email already exists"}
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, internal("check email", err)
	}

	now := s.now()
	user := &models.User{
		Username:  stored,
		Email:     email,
		Role:      models.RoleUser,
		Level:     progression.LevelFor(0),
		Badges:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.SetPassword(user, password); err != nil {
		return nil, err
	}
	added := progression.ApplyBadges(user, true)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, &ConflictError{Message: "Email already exists"}
		}
		return nil, internal("create user", err)
	}
	if s.progress != nil {
		s.progress.announce(ctx, user, added, TriggerSignup)
	}

	return s.issue(user, now)
}

// Authenticate verifies email and password, records the login streak and
// issues a session. Unknown email and wrong password fail identically.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.burnCompare(password)
			return nil, errInvalidCredentials
		}
		return nil, internal("find user", err)
	}

	ok, err := utils.CheckPasswordHash(password, user.PasswordHash)
	if err != nil {
		return nil, internal("compare password", err)
	}
	if !ok {
		return nil, errInvalidCredentials
	}

	now := s.now()
	if s.progress != nil {
		if _, err := s.progress.RecordLogin(ctx, user, now); err != nil {
			return nil, err
		}
	}

	return s.issue(user, now)
}

// ParseSession validates a session token and returns its claims.
func (s *CredentialService) ParseSession(token string) (*utils.Claims, error) {
	claims, err := s.tokens.ParseJWTToken(token)
	if err != nil {
		return nil, &AuthError{Message: "Invalid or expired session"}
	}
	return claims, nil
}

// SessionTTL is the lifetime of issued session tokens.
func (s *CredentialService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// SetPassword hashes plaintext into u.PasswordHash unless it already matches
// the stored hash. It reports whether the hash changed.
func (s *CredentialService) SetPassword(u *models.User, plaintext string) (bool, error) {
	if u.PasswordHash != "" {
		same, err := utils.CheckPasswordHash(plaintext, u.PasswordHash)
		if err != nil {
			return false, internal("compare password", err)
		}
		if same {
			return false, nil
		}
	}

	hash, err := utils.HashPassword(plaintext)
	if err != nil {
		return false, internal("hash password", err)
	}
	u.PasswordHash = hash
	return true, nil
}

// ChangePassword replaces the password of a signed-in user after checking
// the current one.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return validation("Current and new password are required")
	}
	if err := checkPassword(next); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return storeError("find user", err)
	}

	ok, err := utils.CheckPasswordHash(current, user.PasswordHash)
	if err != nil {
		return internal("compare password", err)
	}
	if !ok {
		return &AuthError{Message: "Current password is incorrect"}
	}

	return s.storePassword(ctx, user, next, nil)
}

// RequestPasswordReset issues a one-time six digit code for email, stores
// only its salted hash and mails the code. The code is returned for the
// caller's use; it must not be echoed to the requester.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return "", validation("Email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", storeError("find user", err)
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return "", internal("generate reset code", err)
	}
	hash, err := utils.NewResetCodeHash(code)
	if err != nil {
		return "", internal("hash reset code", err)
	}
	expiry := s.now().Add(resetCodeLifetime)

	_, err = s.users.SetFields(ctx, user.ID.Hex(), map[string]interface{}{
		models.FieldResetToken:       hash,
		models.FieldResetTokenExpiry: expiry,
	})
	if err != nil {
		return "", storeError("store reset code", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, email, code); err != nil {
		return "", internal("send reset email", err)
	}
	return code, nil
}

// ResetPassword sets a new password when code matches the stored, unexpired
// hash. The reset token is cleared on success.
func (s *CredentialService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = utils.NormalizeEmail(email)
	if email == "" || code == "" || newPassword == "" {
		return validation("Email, code and new password are required")
	}
	if !resetCodePattern.MatchString(code) {
		return validation("Reset code must be 6 digits")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	invalid := &AuthError{Message: msgInvalidResetCode}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return invalid
		}
		return internal("find user", err)
	}

	if user.ResetPasswordTokenHash == "" || user.ResetPasswordTokenExpiry == nil {
		return invalid
	}
	if !s.now().Before(*user.ResetPasswordTokenExpiry) {
		return invalid
	}
	if !utils.VerifyResetCode(code, user.ResetPasswordTokenHash) {
		return invalid
	}

	return s.storePassword(ctx, user, newPassword, map[string]interface{}{
		models.FieldResetToken:       nil,
		models.FieldResetTokenExpiry: nil,
	})
}

// storePassword writes a new hash only if the plaintext actually changed.
// extra fields are written either way.
func (s *CredentialService) storePassword(ctx context.Context, user *models.User, plaintext string, extra map[string]interface{}) error {
	changed, err := s.SetPassword(user, plaintext)
	if err != nil {
		return err
	}

	fields := make(map[string]interface{}, len(extra)+2)
	for k, v := range extra {
		fields[k] = v
	}
	if changed {
		fields[models.FieldPassword] = user.PasswordHash
	}
	if len(fields) == 0 {
		return nil
	}
	fields[models.FieldUpdatedAt] = s.now()

	if _, err := s.users.SetFields(ctx, user.ID.Hex(), fields); err != nil {
		return storeError("update password", err)
	}
	return nil
}

func (s *CredentialService) issue(user *models.User, now time.Time) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateJWTToken(user.ID.Hex(), now)
	if err != nil {
		return nil, internal("sign token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// burnCompare spends the same bcrypt work as a real comparison so response
// time does not reveal whether an email is registered.
func (s *CredentialService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("codearena-dummy-password")
	})
	if s.dummyHash != "" {
		_, _ = utils.CheckPasswordHash(password, s.dummyHash)
	}
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return validation("Password must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return validation("Password must be at most 72 bytes")
	}
	return nil
}
