package application

import (
	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
)

// newChallenge issues a fresh OTP validation value: uniform random
// 6-digit code, absolute expiry at now+TTL, unverified. Writing it
// wholesale over the previous validation state supersedes any earlier
// code; no challenge history is kept.
func (s *AuthService) newChallenge() (entity.Validation, error) {
	code, err := s.genOTP()
	if err != nil {
		return entity.Validation{}, err
	}
	exp := s.now().Add(s.OTPTTL)
	return entity.Validation{IsVerified: false, OTP: code, Expiry: &exp}, nil
}

// otpMatches decides whether a submitted code is accepted for the user's
// current challenge. Acceptance is an exact equality check on the code;
// the stored expiry is intentionally not compared here, matching current
// product behavior (the action token gating the flow carries its own
// expiry). Pinned by TestVerifyAccountAcceptsExpiredOTP.
func otpMatches(u *entity.User, submitted int) bool {
	return !u.Validation.IsVerified && u.Validation.OTP == submitted
}
