package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ascend/internal/models"
)

type fakeUserRepo struct {
	users map[string]*models.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) UpdatePassword(userID uuid.UUID, newHash string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.PasswordHash = newHash
			return nil
		}
	}
	return errors.New("user not found")
}

type fakeResetRepo struct {
	codes map[uuid.UUID]*models.PasswordResetCode
	users *fakeUserRepo
}

func newFakeResetRepo(users *fakeUserRepo) *fakeResetRepo {
	return &fakeResetRepo{codes: map[uuid.UUID]*models.PasswordResetCode{}, users: users}
}

func (r *fakeResetRepo) CreateIfNoneActive(userID uuid.UUID, code string, now, expiresAt time.Time) (*models.PasswordResetCode, error) {
	for _, pr := range r.codes {
		if pr.UserID == userID && !pr.Used && pr.ExpiresAt.After(now) && pr.Attempts < models.MaxResetAttempts {
			return nil, nil
		}
	}
	pr := &models.PasswordResetCode{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	r.codes[pr.ID] = pr
	return pr, nil
}

func (r *fakeResetRepo) GetByCodeUnused(code string) (*models.PasswordResetCode, error) {
	for _, pr := range r.codes {
		if pr.Code == code && !pr.Used {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeResetRepo) IncrementAttempts(id uuid.UUID) (int, error) {
	pr, ok := r.codes[id]
	if !ok {
		return 0, errors.New("code not found")
	}
	pr.Attempts++
	return pr.Attempts, nil
}

func (r *fakeResetRepo) ConsumeForPasswordChange(userID uuid.UUID, newHash string) error {
	if err := r.users.UpdatePassword(userID, newHash); err != nil {
		return err
	}
	for _, pr := range r.codes {
		if pr.UserID == userID && !pr.Used {
			pr.Used = true
		}
	}
	return nil
}

func (r *fakeResetRepo) Delete(id uuid.UUID) error {
	delete(r.codes, id)
	return nil
}

func (r *fakeResetRepo) DeleteExpiredAndUsed(now time.Time) (int64, error) {
	var n int64
	for id, pr := range r.codes {
		if pr.Used || pr.ExpiresAt.Before(now) {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

type fakeEmailService struct {
	sent     []string // codes sent
	failNext bool
}

func (e *fakeEmailService) SendWelcomeEmail(email, firstName string) error { return nil }

func (e *fakeEmailService) SendPasswordResetEmail(email, code, firstName string) error {
	if e.failNext {
		e.failNext = false
		return errors.New("smtp unreachable")
	}
	e.sent = append(e.sent, code)
	return nil
}

type resetFixture struct {
	users  *fakeUserRepo
	codes  *fakeResetRepo
	emails *fakeEmailService
	svc    *passwordResetService
	user   *models.User
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	users := newFakeUserRepo()
	codes := newFakeResetRepo(users)
	emails := &fakeEmailService{}
	user := &models.User{Email: "mira@example.com", FirstName: "Mira", PasswordHash: "old-hash"}
	if err := users.Create(user); err != nil {
		t.Fatal(err)
	}
	svc := &passwordResetService{
		userRepo: users,
		repo:     codes,
		emails:   emails,
		auth:     NewAuthService([]string{"example.com"}),
		now:      time.Now,
	}
	return &resetFixture{users: users, codes: codes, emails: emails, svc: svc, user: user}
}

func (f *resetFixture) activeCode(t *testing.T) *models.PasswordResetCode {
	t.Helper()
	for _, pr := range f.codes.codes {
		if !pr.Used {
			return pr
		}
	}
	t.Fatal("no active code in store")
	return nil
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset("ghost@example.com"); err != nil {
		t.Fatal(err)
	}
	if len(f.codes.codes) != 0 {
		t.Fatalf("no code should be stored for an unknown email, got %d", len(f.codes.codes))
	}
	if len(f.emails.sent) != 0 {
		t.Fatal("no email should be sent for an unknown email")
	}
}

func TestRequestResetIssuesSixDigitCode(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset("  MIRA@example.com "); err != nil {
		t.Fatal(err)
	}
	if len(f.emails.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.emails.sent))
	}
	code := f.emails.sent[0]
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Fatalf("non-digit in code %q", code)
		}
	}
	pr := f.activeCode(t)
	ttl := pr.ExpiresAt.Sub(pr.CreatedAt)
	if ttl != 15*time.Minute {
		t.Fatalf("expected 15m TTL, got %v", ttl)
	}
}

func TestRequestResetAtMostOneActive(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	if len(f.codes.codes) != 1 {
		t.Fatalf("second request should be a no-op, got %d codes", len(f.codes.codes))
	}
	if len(f.emails.sent) != 1 {
		t.Fatalf("second request should not send, got %d emails", len(f.emails.sent))
	}
}

func TestRequestResetCompensatesOnDeliveryFailure(t *testing.T) {
	f := newResetFixture(t)
	f.emails.failNext = true
	err := f.svc.RequestReset(f.user.Email)
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
	if len(f.codes.codes) != 0 {
		t.Fatal("undeliverable code should be deleted")
	}

	// The failed request must not block a retry.
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	if len(f.codes.codes) != 1 {
		t.Fatal("retry after delivery failure should issue a fresh code")
	}
}

func TestVerifyCodeMissCostsNothing(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	ok, err := f.svc.VerifyCode("000000x")
	if err != nil || ok {
		t.Fatalf("unknown code: ok=%v err=%v", ok, err)
	}
	if got := f.activeCode(t).Attempts; got != 0 {
		t.Fatalf("a miss must not charge an attempt, got %d", got)
	}
}

func TestVerifyCodeAttemptLimit(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	code := f.emails.sent[0]

	// The hit that brings the counter to the limit already fails, so only
	// the first two verifications can succeed.
	for i := 0; i < models.MaxResetAttempts-1; i++ {
		ok, err := f.svc.VerifyCode(code)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("attempt %d should succeed", i+1)
		}
	}
	ok, err := f.svc.VerifyCode(code)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("verification reaching the attempt limit should fail")
	}
	if got := f.activeCode(t).Attempts; got != models.MaxResetAttempts {
		t.Fatalf("every hit is charged, got %d attempts", got)
	}
	// The verify verdict and a follow-up reset with the same code must
	// agree: both reject an exhausted code.
	ok, err = f.svc.ResetPassword(code, "new-password-1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("reset must agree with the failed verification")
	}
}

func TestVerifyCodeExpiredStillCharged(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	code := f.emails.sent[0]
	f.svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	ok, err := f.svc.VerifyCode(code)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expired code should not verify")
	}
	if got := f.activeCode(t).Attempts; got != 1 {
		t.Fatalf("expired hit still costs an attempt, got %d", got)
	}
}

func TestResetPasswordConsumesAllCodes(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	code := f.emails.sent[0]

	// A second user's code must survive the reset.
	other := &models.User{Email: "jo@example.com", FirstName: "Jo"}
	if err := f.users.Create(other); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.RequestReset(other.Email); err != nil {
		t.Fatal(err)
	}

	ok, err := f.svc.ResetPassword(code, "new-password-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("reset with a valid code should succeed")
	}
	if f.user.PasswordHash == "old-hash" {
		t.Fatal("password hash should change")
	}
	if !f.svc.auth.CheckPassword(f.user.PasswordHash, "new-password-1") {
		t.Fatal("new password should verify against the stored hash")
	}

	for _, pr := range f.codes.codes {
		switch pr.UserID {
		case f.user.ID:
			if !pr.Used {
				t.Fatal("all of the user's codes should be consumed")
			}
		case other.ID:
			if pr.Used {
				t.Fatal("other users' codes must be untouched")
			}
		}
	}

	// Single use: the consumed code cannot be replayed.
	ok, err = f.svc.ResetPassword(code, "another-pass")
	if err != nil || ok {
		t.Fatalf("consumed code must not reset again: ok=%v err=%v", ok, err)
	}
}

func TestResetPasswordDoesNotChargeAttempts(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	code := f.emails.sent[0]

	if ok, err := f.svc.ResetPassword("999999", "whatever1"); err != nil || ok {
		t.Fatalf("wrong code: ok=%v err=%v", ok, err)
	}
	if got := f.activeCode(t).Attempts; got != 0 {
		t.Fatalf("reset path must not charge attempts, got %d", got)
	}

	if ok, err := f.svc.ResetPassword(code, ""); err == nil || ok {
		t.Fatalf("empty password must be rejected: ok=%v err=%v", ok, err)
	}
}

func TestResetPasswordRespectsAttemptLimit(t *testing.T) {
	f := newResetFixture(t)
	if err := f.svc.RequestReset(f.user.Email); err != nil {
		t.Fatal(err)
	}
	code := f.emails.sent[0]
	f.activeCode(t).Attempts = models.MaxResetAttempts

	ok, err := f.svc.ResetPassword(code, "new-password-1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("exhausted code must not reset the password")
	}
}

func TestCleanupRemovesExactlyUsedAndExpired(t *testing.T) {
	f := newResetFixture(t)
	now := time.Now()

	fresh := &models.PasswordResetCode{ID: uuid.New(), UserID: f.user.ID, Code: "111111", ExpiresAt: now.Add(10 * time.Minute)}
	expired := &models.PasswordResetCode{ID: uuid.New(), UserID: f.user.ID, Code: "222222", ExpiresAt: now.Add(-time.Minute)}
	used := &models.PasswordResetCode{ID: uuid.New(), UserID: f.user.ID, Code: "333333", ExpiresAt: now.Add(10 * time.Minute), Used: true}
	for _, pr := range []*models.PasswordResetCode{fresh, expired, used} {
		f.codes.codes[pr.ID] = pr
	}

	n, err := f.svc.Cleanup(now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows removed, got %d", n)
	}
	if _, ok := f.codes.codes[fresh.ID]; !ok {
		t.Fatal("live code must survive cleanup")
	}
}
