package application

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
	"github.com/clinicahealth/clinica-backend/internal/domain/repository"
	"github.com/clinicahealth/clinica-backend/pkg/apperr"
	"github.com/clinicahealth/clinica-backend/pkg/helpers"
	"github.com/clinicahealth/clinica-backend/pkg/mailer"
)

// storeTimeout bounds every credential-store round trip.
const storeTimeout = 5 * time.Second

// EmailPublisher enqueues email jobs. Satisfied by helpers.RabbitPublisher.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService sequences the credential-lifecycle workflows: registration,
// OTP verification, sign-in, token refresh and the password flows. Each
// workflow checks its account-state preconditions in a fixed order and
// short-circuits with one categorized error.
type AuthService struct {
	Users  repository.UserRepository
	Tokens *helpers.TokenManager
	Mail   EmailPublisher
	Logger *logrus.Logger
	OTPTTL time.Duration

	now    func() time.Time
	genOTP func() (int, error)
}

func NewAuthService(users repository.UserRepository, tokens *helpers.TokenManager, mail EmailPublisher, logger *logrus.Logger, otpTTL time.Duration) *AuthService {
	return &AuthService{
		Users:  users,
		Tokens: tokens,
		Mail:   mail,
		Logger: logger,
		OTPTTL: otpTTL,
		now:    time.Now,
		genOTP: helpers.GenOTPCode,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	Token string
	Email string
}

type ResendResult struct {
	Token string
	Email string
	ID    string
}

// SessionResult carries the dual-token pair minted after verification,
// sign-in and password reset.
type SessionResult struct {
	AccessToken  string
	RefreshToken string
	Role         entity.Role
	ID           string
}

type AccessResult struct {
	AccessToken string
	Role        entity.Role
	ID          string
}

// requireUsable reports the first violated account-state precondition.
// Blocked is checked before deleted everywhere except password reset,
// so a blocked-and-deleted account always reports "Blocked" first.
func requireUsable(u *entity.User) error {
	if !u.IsActive {
		return apperr.BadRequest("Account is Blocked")
	}
	if u.IsDelete {
		return apperr.BadRequest("Account is Deleted")
	}
	return nil
}

func requireVerified(u *entity.User) error {
	if !u.Validation.IsVerified {
		return apperr.BadRequest("Account is not verified")
	}
	return nil
}

func (s *AuthService) findUser(ctx context.Context, email string, includeSecrets bool, missingMsg string) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	u, err := s.Users.GetByEmail(ctx, email, includeSecrets)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperr.NotFound(missingMsg)
		}
		return nil, err
	}
	return u, nil
}

// Register creates the User and Patient records in one transaction with a
// fresh OTP challenge attached, enqueues the verification email and mints
// the action token the client must present to /auth/verify. On any
// failure the transaction is rolled back and the cause surfaces as a
// single BadRequest; no partial User/Patient pair ever persists.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, *entity.Patient, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}

	challenge, err := s.newChallenge()
	if err != nil {
		return nil, nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}

	user := &entity.User{
		Email:      in.Email,
		Password:   hash,
		Name:       in.Name,
		Role:       entity.RolePatient,
		Slug:       helpers.GenerateSlug(in.Name),
		IsActive:   true,
		Validation: challenge,
	}
	patient := &entity.Patient{Name: in.Name, Slug: user.Slug}

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.Users.CreateUserAndPatient(cctx, user, patient); err != nil {
		return nil, nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}

	s.enqueueOTPEmail(ctx, user, mailer.TemplateVerifyAccount)

	token, err := s.Tokens.GenerateActionToken(user)
	if err != nil {
		return nil, nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	return &RegisterResult{Token: token, Email: user.Email}, patient, nil
}

// VerifyAccount validates the action token and the submitted OTP, then
// flips the account to verified and clears the code so it cannot replay.
func (s *AuthService) VerifyAccount(ctx context.Context, token string, otp int) (*SessionResult, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Please provide your token")
	}
	claims, err := s.Tokens.ParseActionToken(token)
	if err != nil {
		return nil, apperr.Wrap(http.StatusUnauthorized, "Invalid Token", err)
	}

	u, err := s.findUser(ctx, claims.Email, true, "Invalid Email")
	if err != nil {
		return nil, err
	}
	if err := requireUsable(u); err != nil {
		return nil, err
	}
	if u.Validation.IsVerified {
		return nil, apperr.BadRequest("Account is already verified")
	}
	// OTP mismatch on this path is Unauthorized, not BadRequest.
	if !otpMatches(u, otp) {
		return nil, apperr.Unauthorized("Invalid Otp")
	}

	uctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.Users.UpdateValidation(uctx, u.Email, entity.Verified()); err != nil {
		return nil, err
	}
	return s.session(u)
}

// ResendOTP overwrites the active challenge with a new one and mints a
// fresh action token. Only the latest code validates afterwards.
func (s *AuthService) ResendOTP(ctx context.Context, email string) (*ResendResult, error) {
	u, err := s.findUser(ctx, email, false, "Invalid Email")
	if err != nil {
		return nil, err
	}
	if err := requireUsable(u); err != nil {
		return nil, err
	}

	challenge, err := s.newChallenge()
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	uctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.Users.UpdateValidation(uctx, u.Email, challenge); err != nil {
		return nil, err
	}
	u.Validation = challenge

	s.enqueueOTPEmail(ctx, u, mailer.TemplateOTP)

	token, err := s.Tokens.GenerateActionToken(u)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	return &ResendResult{Token: token, Email: u.Email, ID: u.ID}, nil
}

// SignIn authenticates by password, optionally stores the device push
// token, and mints the access/refresh pair.
func (s *AuthService) SignIn(ctx context.Context, email, password, fcmToken string) (*SessionResult, error) {
	u, err := s.findUser(ctx, email, true, "Invalid Email")
	if err != nil {
		return nil, err
	}
	if err := requireUsable(u); err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperr.BadRequest("Invalid Password")
	}
	if err := requireVerified(u); err != nil {
		return nil, err
	}

	if fcmToken != "" {
		uctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		if err := s.Users.UpdateFCMToken(uctx, u.Email, fcmToken); err != nil {
			return nil, apperr.BadRequest("failed to update fcm token")
		}
	}
	return s.session(u)
}

// Refresh exchanges a valid refresh token for a new access token. Token
// failures are Unauthorized, never NotFound.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AccessResult, error) {
	claims, err := s.Tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Wrap(http.StatusUnauthorized, "Invalid Token", err)
	}

	u, err := s.findUser(ctx, claims.Email, false, "User Not Found")
	if err != nil {
		return nil, err
	}
	if err := requireUsable(u); err != nil {
		return nil, err
	}
	if err := requireVerified(u); err != nil {
		return nil, err
	}

	access, err := s.Tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	return &AccessResult{AccessToken: access, Role: u.Role, ID: u.ID}, nil
}

// ChangePassword verifies the caller's current password before storing
// the new hash. The caller is resolved from access-token claims.
func (s *AuthService) ChangePassword(ctx context.Context, claims *helpers.Claims, oldPassword, newPassword string) error {
	u, err := s.findUser(ctx, claims.Email, true, "User Not Found")
	if err != nil {
		return err
	}
	if err := requireUsable(u); err != nil {
		return err
	}
	if err := requireVerified(u); err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.BadRequest("Invalid Old Password")
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	uctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.Users.UpdatePassword(uctx, u.Email, hash)
}

// ForgetPassword starts the reset flow: a new challenge overwrites the
// validation state (the account must re-verify with the emailed code)
// and an action token is minted for the follow-up calls.
func (s *AuthService) ForgetPassword(ctx context.Context, email string) (*RegisterResult, error) {
	u, err := s.findUser(ctx, email, false, "Invalid Email")
	if err != nil {
		return nil, err
	}
	if err := requireUsable(u); err != nil {
		return nil, err
	}
	if err := requireVerified(u); err != nil {
		return nil, err
	}

	challenge, err := s.newChallenge()
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	uctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.Users.UpdateValidation(uctx, u.Email, challenge); err != nil {
		return nil, err
	}
	u.Validation = challenge

	s.enqueueOTPEmail(ctx, u, mailer.TemplateOTP)

	token, err := s.Tokens.GenerateActionToken(u)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	return &RegisterResult{Token: token, Email: u.Email}, nil
}

// ResetPassword stores the new hash for the account named by a valid
// action token and marks the challenge consumed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*SessionResult, error) {
	claims, err := s.Tokens.ParseActionToken(token)
	if err != nil {
		return nil, apperr.Wrap(http.StatusUnauthorized, "Invalid Token", err)
	}

	u, err := s.findUser(ctx, claims.Email, false, "Invalid Email")
	if err != nil {
		return nil, err
	}
	// This flow checks deleted before blocked.
	if u.IsDelete {
		return nil, apperr.BadRequest("Account is Deleted")
	}
	if !u.IsActive {
		return nil, apperr.BadRequest("Account is Blocked")
	}
	if err := requireVerified(u); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}

	uctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.Users.UpdatePassword(uctx, u.Email, hash); err != nil {
		return nil, err
	}
	if err := s.Users.UpdateValidation(uctx, u.Email, entity.Verified()); err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *AuthService) session(u *entity.User) (*SessionResult, error) {
	access, err := s.Tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	refresh, err := s.Tokens.GenerateRefreshToken(u)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	return &SessionResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         u.Role,
		ID:           u.ID,
	}, nil
}

// enqueueOTPEmail hands the rendered challenge email to the queue.
// Dispatch is best-effort: a queue outage is logged, never surfaced, so
// committed account state is not corrupted by delivery trouble.
func (s *AuthService) enqueueOTPEmail(ctx context.Context, u *entity.User, template string) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Name:     u.Name,
		OTP:      u.Validation.OTP,
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("enqueue otp email failed")
	}
}
