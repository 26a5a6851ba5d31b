package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pms/internal/domain"
	"pms/internal/repositories"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func userRowColumns() []string {
	return []string{"id", "name", "username", "email", "password_hash", "role", "status", "created_at", "updated_at"}
}

func TestLoginSuccessAndTokenRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE email = \$1 OR username = \$1`).
		WithArgs("dev@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns()).
			AddRow(int64(5), "Dev", "dev", "dev@example.com", string(hash), "developer", "active", now, now))

	svc := AuthService{
		Users:     repositories.UserRepository{DB: db},
		JWTSecret: []byte("test-secret"),
		TokenTTL:  time.Hour,
		Log:       testLogger(),
	}

	token, user, err := svc.Login(context.Background(), Credentials{Login: "dev@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 5 {
		t.Fatalf("unexpected user: %+v", user)
	}

	principal, err := svc.PrincipalFromToken(token)
	if err != nil {
		t.Fatalf("token should round-trip: %v", err)
	}
	if principal.ID != 5 || principal.Role != domain.RoleDeveloper || principal.Anonymous {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestLoginWrongPasswordIndistinguishableFromMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE email = \$1 OR username = \$1`).
		WillReturnRows(sqlmock.NewRows(userRowColumns()).
			AddRow(int64(5), "Dev", "dev", "dev@example.com", string(hash), "developer", "active", now, now))
	mock.ExpectQuery(`FROM users WHERE email = \$1 OR username = \$1`).
		WillReturnRows(sqlmock.NewRows(userRowColumns()))

	svc := AuthService{Users: repositories.UserRepository{DB: db}, JWTSecret: []byte("s"), Log: testLogger()}

	_, _, errWrongPass := svc.Login(context.Background(), Credentials{Login: "dev", Password: "wrong"})
	_, _, errNoUser := svc.Login(context.Background(), Credentials{Login: "ghost", Password: "wrong"})

	if !domain.IsForbidden(errWrongPass) || !domain.IsForbidden(errNoUser) {
		t.Fatalf("both failures must be forbidden: %v / %v", errWrongPass, errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("failure messages must not leak which part was wrong: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestLoginDisabledAccountRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`FROM users`).
		WillReturnRows(sqlmock.NewRows(userRowColumns()).
			AddRow(int64(5), "Dev", "dev", "dev@example.com", string(hash), "developer", "disabled", now, now))

	svc := AuthService{Users: repositories.UserRepository{DB: db}, JWTSecret: []byte("s"), Log: testLogger()}
	if _, _, err := svc.Login(context.Background(), Credentials{Login: "dev", Password: "pw123456"}); !domain.IsForbidden(err) {
		t.Fatalf("disabled account should be rejected, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := AuthService{Log: testLogger()}
	_, err := svc.Register(context.Background(), Registration{Username: "u", Email: "u@e.io", Password: "short"})
	if !domain.IsValidation(err) {
		t.Fatalf("short password should be a validation error, got %v", err)
	}
}

func TestRegisterConflictOnExistingEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs("u@e.io", "u").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	svc := AuthService{Users: repositories.UserRepository{DB: db}, Log: testLogger()}
	_, err = svc.Register(context.Background(), Registration{Username: "u", Email: "u@e.io", Password: "longenough"})
	if !domain.IsConflict(err) {
		t.Fatalf("duplicate registration should conflict, got %v", err)
	}
}

func TestPrincipalFromTokenRejectsGarbage(t *testing.T) {
	svc := AuthService{JWTSecret: []byte("s")}
	if _, err := svc.PrincipalFromToken("not-a-token"); !domain.IsForbidden(err) {
		t.Fatalf("garbage token should be forbidden, got %v", err)
	}
}
