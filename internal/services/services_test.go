package services_test

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/stride/internal/database"
	"github.com/example/stride/internal/models"
)

// newTestDB opens a per-test in-memory SQLite database with the full
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

var codePattern = regexp.MustCompile(`\d{6}`)

// fakeMailer captures sent messages so tests can read the code out
// of the rendered body.
type fakeMailer struct {
	lastTo      string
	lastSubject string
	lastBody    string
	sent        int
	fail        bool
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.lastTo = to
	m.lastSubject = subject
	m.lastBody = htmlBody
	m.sent++
	return nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	code := codePattern.FindString(m.lastBody)
	require.Len(t, code, 6, "mail body should carry a 6-digit code")
	return code
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: "Test User", PasswordHash: "x", IsVerified: true}
	require.NoError(t, db.Create(user).Error)
	return user
}
