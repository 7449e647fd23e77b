package cert_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/traingate/traingate/internal/cert"
	"github.com/traingate/traingate/internal/db"
	"github.com/traingate/traingate/internal/storage"
	"github.com/traingate/traingate/internal/training"
)

type fixture struct {
	store  *training.SQLStore
	engine *training.Engine
	issuer *cert.Issuer
	user   training.User
	quizID string
}

// newFixture seeds one user and one module with a quiz in legacy (flat)
// mode, backed by a throwaway sqlite file and certificate directory.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	store := training.NewSQLStore(dbh, "sqlite")
	engine := training.NewEngine(store)
	files, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}

	user := training.User{ID: "u1", Name: "Test Learner", Email: "learner@example.com", Role: training.RoleEmployee}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.CreateModule(ctx, training.Module{ID: "mod-1", Title: "Intro"}); err != nil {
		t.Fatalf("seed module: %v", err)
	}
	quiz, err := store.EnsureQuiz(ctx, "mod-1")
	if err != nil {
		t.Fatalf("ensure quiz: %v", err)
	}
	return &fixture{
		store:  store,
		engine: engine,
		issuer: cert.NewIssuer(store, engine, files),
		user:   user,
		quizID: quiz.ID,
	}
}

func (f *fixture) passEverything(t *testing.T) {
	t.Helper()
	if _, err := f.store.CreateAttempt(context.Background(), f.user.ID, f.quizID, 90, true, nil); err != nil {
		t.Fatalf("seed passing attempt: %v", err)
	}
}

func TestNotEligibleBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.issuer.GlobalStatus(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Eligible || st.URL != "" {
		t.Fatalf("fresh user status = %+v", st)
	}
	if _, err := f.issuer.IssueGlobal(ctx, f.user); !errors.Is(err, cert.ErrNotEligible) {
		t.Fatalf("want ErrNotEligible, got %v", err)
	}
}

func TestIssueAndDownloadAfterCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.passEverything(t)

	st, err := f.issuer.GlobalStatus(ctx, f.user.ID)
	if err != nil || !st.Eligible {
		t.Fatalf("status after completion = %+v err=%v", st, err)
	}
	if st.URL != "" {
		t.Fatalf("download URL before issuing: %q", st.URL)
	}

	url, err := f.issuer.IssueGlobal(ctx, f.user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if url != "/certificate/download" {
		t.Fatalf("url = %q", url)
	}

	c, exists, err := f.store.GetCertificate(ctx, f.user.ID, training.GlobalCertificate)
	if err != nil || !exists {
		t.Fatalf("certificate row: exists=%v err=%v", exists, err)
	}
	if c.TotalScore != 90 {
		t.Fatalf("total score = %d, want 90", c.TotalScore)
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		t.Fatalf("pdf missing on disk: %v", err)
	}

	rc, err := f.issuer.Open(ctx, f.user.ID, training.GlobalCertificate)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || len(data) == 0 {
		t.Fatalf("read pdf: n=%d err=%v", len(data), err)
	}

	st, _ = f.issuer.GlobalStatus(ctx, f.user.ID)
	if st.URL != "/certificate/download" {
		t.Fatalf("status after issue = %+v", st)
	}
}

// A certificate row alone must never serve a download once the attempts
// behind it are gone.
func TestStaleCertificateRowDoesNotServe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.passEverything(t)
	if _, err := f.issuer.IssueGlobal(ctx, f.user); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := f.store.DeleteAttempts(ctx, f.user.ID, nil); err != nil {
		t.Fatalf("reset attempts: %v", err)
	}

	st, err := f.issuer.GlobalStatus(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Eligible || st.URL != "" {
		t.Fatalf("stale row still advertised: %+v", st)
	}
	if _, err := f.issuer.Open(ctx, f.user.ID, training.GlobalCertificate); !errors.Is(err, cert.ErrNotEligible) {
		t.Fatalf("want ErrNotEligible from open, got %v", err)
	}
}

func TestInvalidateRemovesRowAndFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.passEverything(t)
	if _, err := f.issuer.IssueGlobal(ctx, f.user); err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, _, _ := f.store.GetCertificate(ctx, f.user.ID, training.GlobalCertificate)

	if err := f.issuer.Invalidate(ctx, f.user.ID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, exists, _ := f.store.GetCertificate(ctx, f.user.ID, training.GlobalCertificate); exists {
		t.Fatalf("certificate row survived invalidation")
	}
	if _, err := os.Stat(c.FilePath); !os.IsNotExist(err) {
		t.Fatalf("pdf survived invalidation: %v", err)
	}

	// Invalidating again is a no-op, not an error.
	if err := f.issuer.Invalidate(ctx, f.user.ID); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
}

func TestMainModuleCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Switch to grouped mode: assign the module to a main module.
	main, err := f.store.CreateMainModule(ctx, training.MainModule{Title: "Basics", Active: true})
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	if err := f.store.AssignModules(ctx, main.ID, []string{"mod-1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := f.issuer.IssueForMainModule(ctx, f.user, main.ID); !errors.Is(err, cert.ErrNotEligible) {
		t.Fatalf("want ErrNotEligible before completion, got %v", err)
	}

	f.passEverything(t)
	url, err := f.issuer.IssueForMainModule(ctx, f.user, main.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	st, err := f.issuer.MainModuleStatus(ctx, f.user.ID, main.ID)
	if err != nil || !st.Eligible || st.URL != url {
		t.Fatalf("status = %+v err=%v, want url %q", st, err, url)
	}

	if _, err := f.issuer.MainModuleStatus(ctx, f.user.ID, 999); !errors.Is(err, training.ErrMainModuleMissing) {
		t.Fatalf("want ErrMainModuleMissing for unknown group, got %v", err)
	}
}
