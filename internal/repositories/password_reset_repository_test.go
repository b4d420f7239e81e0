package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"ascend/internal/models"
)

func TestCreateIfNoneActiveInsertsUnderLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	userID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs(userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(userID, now, models.MaxResetAttempts).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO password_reset_codes").
		WithArgs(sqlmock.AnyArg(), userID, "123456", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPasswordResetRepository(db)
	pr, err := repo.CreateIfNoneActive(userID, "123456", now, now.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("CreateIfNoneActive: %v", err)
	}
	if pr == nil {
		t.Fatal("expected a created record")
	}
	if pr.Code != "123456" || pr.UserID != userID {
		t.Fatalf("unexpected record: %+v", pr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateIfNoneActiveSkipsWhenActiveExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	userID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs(userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(userID, now, models.MaxResetAttempts).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	repo := NewPasswordResetRepository(db)
	pr, err := repo.CreateIfNoneActive(userID, "654321", now, now.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("CreateIfNoneActive: %v", err)
	}
	if pr != nil {
		t.Fatal("no insert expected while an active code exists")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByCodeUnusedMissReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, code").WithArgs("000000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "code", "expires_at", "attempts", "used", "created_at"}))

	repo := NewPasswordResetRepository(db)
	pr, err := repo.GetByCodeUnused("000000")
	if err != nil {
		t.Fatalf("GetByCodeUnused: %v", err)
	}
	if pr != nil {
		t.Fatal("miss should return nil, nil")
	}
}

func TestIncrementAttemptsReturnsNewCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("UPDATE password_reset_codes").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"attempts"}).AddRow(3))

	repo := NewPasswordResetRepository(db)
	attempts, err := repo.IncrementAttempts(id)
	if err != nil {
		t.Fatalf("IncrementAttempts: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("got %d", attempts)
	}
}

func TestConsumeForPasswordChangeIsOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET password_hash").WithArgs("new-hash", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE password_reset_codes SET used = TRUE").WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewPasswordResetRepository(db)
	if err := repo.ConsumeForPasswordChange(userID, "new-hash"); err != nil {
		t.Fatalf("ConsumeForPasswordChange: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteExpiredAndUsedReportsRowCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("DELETE FROM password_reset_codes").WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 5))

	repo := NewPasswordResetRepository(db)
	n, err := repo.DeleteExpiredAndUsed(now)
	if err != nil {
		t.Fatalf("DeleteExpiredAndUsed: %v", err)
	}
	if n != 5 {
		t.Fatalf("got %d", n)
	}
}
