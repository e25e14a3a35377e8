package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/stride/internal/models"
	"github.com/example/stride/internal/services"
)

func TestOTPRoundTrip(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := services.NewOTPService(db, mailer, 10*time.Minute, 3)

	_, err := svc.IssueEmailVerification("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", mailer.lastTo)

	code := mailer.lastCode(t)
	require.NoError(t, svc.VerifyEmail("user@example.com", code))

	// The record is gone after a successful verification.
	err = svc.VerifyEmail("user@example.com", code)
	assert.ErrorIs(t, err, services.ErrOTPNotFound)
}

func TestOTPStoresHashNotCode(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := services.NewOTPService(db, mailer, 10*time.Minute, 3)

	_, err := svc.IssueEmailVerification("user@example.com")
	require.NoError(t, err)

	var record models.OTPCode
	require.NoError(t, db.First(&record, "email = ?", "user@example.com").Error)
	assert.NotEqual(t, mailer.lastCode(t), record.CodeHash)
	assert.NotEmpty(t, record.CodeHash)
	assert.Zero(t, record.Attempts)
}

func TestOTPAttemptLimiting(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := services.NewOTPService(db, mailer, 10*time.Minute, 3)

	_, err := svc.IssueEmailVerification("user@example.com")
	require.NoError(t, err)

	for i, wantRemaining := range []int{2, 1, 0} {
		err := svc.VerifyEmail("user@example.com", "000000")
		var invalid *services.InvalidCodeError
		require.ErrorAs(t, err, &invalid, "attempt %d", i+1)
		assert.Equal(t, wantRemaining, invalid.Remaining)
	}

	// The 4th call, even with the correct code, reports exhaustion
	// and deletes the record.
	err = svc.VerifyEmail("user@example.com", mailer.lastCode(t))
	assert.ErrorIs(t, err, services.ErrAttemptsExhausted)

	err = svc.VerifyEmail("user@example.com", mailer.lastCode(t))
	assert.ErrorIs(t, err, services.ErrOTPNotFound)
}

func TestOTPReissueInvalidatesPrior(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := services.NewOTPService(db, mailer, 10*time.Minute, 3)

	_, err := svc.IssueEmailVerification("user@example.com")
	require.NoError(t, err)
	firstCode := mailer.lastCode(t)

	_, err = svc.IssueEmailVerification("user@example.com")
	require.NoError(t, err)
	secondCode := mailer.lastCode(t)

	var count int64
	require.NoError(t, db.Model(&models.OTPCode{}).
		Where("email = ?", "user@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count, "reissue must not accumulate records")

	if firstCode != secondCode {
		var invalid *services.InvalidCodeError
		assert.ErrorAs(t, svc.VerifyEmail("user@example.com", firstCode), &invalid)
	}
	assert.NoError(t, svc.VerifyEmail("user@example.com", secondCode))
}

func TestOTPExpiry(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := services.NewOTPService(db, mailer, -time.Minute, 3)

	_, err := svc.IssueEmailVerification("user@example.com")
	require.NoError(t, err)

	err = svc.VerifyEmail("user@example.com", mailer.lastCode(t))
	assert.ErrorIs(t, err, services.ErrOTPNotFound)

	// Expired records are swept on lookup.
	var count int64
	require.NoError(t, db.Model(&models.OTPCode{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOTPPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := services.NewOTPService(db, mailer, 10*time.Minute, 3)

	user := seedUser(t, db, "reset@example.com")

	otpID, err := svc.IssuePasswordReset(user.ID, user.Email)
	require.NoError(t, err)
	assert.Equal(t, "Password Reset Request", mailer.lastSubject)

	gotUserID, err := svc.VerifyReset(otpID, mailer.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUserID)

	_, err = svc.VerifyReset(otpID, mailer.lastCode(t))
	assert.ErrorIs(t, err, services.ErrOTPNotFound)
}

func TestOTPMailFailure(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{fail: true}
	svc := services.NewOTPService(db, mailer, 10*time.Minute, 3)

	_, err := svc.IssueEmailVerification("user@example.com")
	assert.True(t, errors.Is(err, services.ErrEmailSend))
}
