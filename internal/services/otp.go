package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stride/internal/models"
	"github.com/example/stride/internal/utils"
)

// OTPService issues and verifies one-time codes for email
// verification and password reset. Codes are stored bcrypt-hashed
// with a bounded attempt counter; records are removed on success,
// exhaustion or expiry.
type OTPService struct {
	db          *gorm.DB
	mailer      Mailer
	ttl         time.Duration
	maxAttempts int
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB, mailer Mailer, ttl time.Duration, maxAttempts int) *OTPService {
	return &OTPService{db: db, mailer: mailer, ttl: ttl, maxAttempts: maxAttempts}
}

// IssueEmailVerification creates and emails a signup verification
// code for the address. Any previous code for the same address is
// invalidated first.
func (s *OTPService) IssueEmailVerification(email string) (uuid.UUID, error) {
	return s.issue(models.OTPPurposeEmailVerify, email, nil,
		"Your verification code", VerificationEmailBody)
}

// IssuePasswordReset creates and emails a password-reset code for
// the user, invalidating any outstanding reset codes. The returned
// record id keys the verify step.
func (s *OTPService) IssuePasswordReset(userID uuid.UUID, email string) (uuid.UUID, error) {
	return s.issue(models.OTPPurposePasswordReset, email, &userID,
		"Password Reset Request", PasswordResetEmailBody)
}

func (s *OTPService) issue(purpose, email string, userID *uuid.UUID, subject string, body func(string) string) (uuid.UUID, error) {
	code, err := generateCode()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate code: %w", err)
	}

	hash, err := utils.HashSecret(code)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash code: %w", err)
	}

	record := models.OTPCode{
		Purpose:   purpose,
		Email:     email,
		UserID:    userID,
		CodeHash:  hash,
		Attempts:  0,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purpose = ? AND email = ?", purpose, email).
			Delete(&models.OTPCode{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.mailer.Send(email, subject, body(code)); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrEmailSend, err)
	}

	return record.ID, nil
}

// VerifyEmail checks a signup code against the record keyed by email.
func (s *OTPService) VerifyEmail(email, code string) error {
	var record models.OTPCode
	err := s.db.Where("purpose = ? AND email = ?", models.OTPPurposeEmailVerify, email).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOTPNotFound
		}
		return err
	}

	_, err = s.check(&record, code)
	return err
}

// VerifyReset checks a password-reset code against the record id and
// returns the owning user on success.
func (s *OTPService) VerifyReset(otpID uuid.UUID, code string) (uuid.UUID, error) {
	var record models.OTPCode
	err := s.db.First(&record, "id = ? AND purpose = ?", otpID, models.OTPPurposePasswordReset).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, ErrOTPNotFound
		}
		return uuid.Nil, err
	}

	return s.check(&record, code)
}

// check runs one verification attempt against a loaded record.
func (s *OTPService) check(record *models.OTPCode, code string) (uuid.UUID, error) {
	if record.ExpiresAt.Before(time.Now()) {
		s.db.Delete(&models.OTPCode{}, "id = ?", record.ID)
		return uuid.Nil, ErrOTPNotFound
	}

	if record.Attempts >= s.maxAttempts {
		if err := s.db.Delete(&models.OTPCode{}, "id = ?", record.ID).Error; err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, ErrAttemptsExhausted
	}

	// Conditional increment so concurrent attempts cannot push the
	// counter past the cap.
	res := s.db.Model(&models.OTPCode{}).
		Where("id = ? AND attempts < ?", record.ID, s.maxAttempts).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		if err := s.db.Delete(&models.OTPCode{}, "id = ?", record.ID).Error; err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, ErrAttemptsExhausted
	}
	record.Attempts++

	if !utils.CheckSecret(record.CodeHash, code) {
		return uuid.Nil, &InvalidCodeError{Remaining: s.maxAttempts - record.Attempts}
	}

	if err := s.db.Delete(&models.OTPCode{}, "id = ?", record.ID).Error; err != nil {
		return uuid.Nil, err
	}

	var userID uuid.UUID
	if record.UserID != nil {
		userID = *record.UserID
	}
	return userID, nil
}

// generateCode produces a uniform 6-digit numeric code.
func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
