package cert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/traingate/traingate/internal/storage"
	"github.com/traingate/traingate/internal/training"
)

var ErrNotEligible = errors.New("not eligible")

// Status is what clients see. Eligibility is recomputed from the current
// attempt ledger on every call: a stored certificate row alone proves
// nothing once attempts may have been reset.
type Status struct {
	Eligible bool   `json:"eligible"`
	URL      string `json:"url,omitempty"`
}

type Issuer struct {
	store  training.Store
	engine *training.Engine
	files  *storage.FSStore
}

func NewIssuer(store training.Store, engine *training.Engine, files *storage.FSStore) *Issuer {
	return &Issuer{store: store, engine: engine, files: files}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func safeName(s string) string { return unsafeNameChars.ReplaceAllString(s, "_") }

// globalEligibility recomputes whether the user has finished everything,
// plus the overall score. With main modules: every main module completed,
// score = mean of the groups' certificate averages. Legacy: every module
// passed, score = mean of best scores per quiz.
func (i *Issuer) globalEligibility(ctx context.Context, userID string) (bool, int, error) {
	legacy, err := i.engine.LegacyMode(ctx)
	if err != nil {
		return false, 0, err
	}
	if !legacy {
		tree, err := i.engine.MainProgress(ctx, userID)
		if err != nil {
			return false, 0, err
		}
		if len(tree) == 0 {
			return false, 0, nil
		}
		sum := 0
		for _, g := range tree {
			if !g.Completed {
				return false, 0, nil
			}
			sum += g.AverageForCertificate
		}
		return true, roundMean(sum, len(tree)), nil
	}

	progress, err := i.engine.LegacyProgress(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	if len(progress) == 0 {
		return false, 0, nil
	}
	for _, p := range progress {
		if p.Status != training.StatusPassed {
			return false, 0, nil
		}
	}
	score, err := i.legacyOverallScore(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return true, score, nil
}

func (i *Issuer) legacyOverallScore(ctx context.Context, userID string) (int, error) {
	attempts, err := i.store.ListAttempts(ctx, userID)
	if err != nil {
		return 0, err
	}
	best := make(map[string]int)
	for _, a := range attempts {
		if cur, ok := best[a.QuizID]; !ok || a.Score > cur {
			best[a.QuizID] = a.Score
		}
	}
	modules, err := i.store.ListModules(ctx)
	if err != nil {
		return 0, err
	}
	sum, count := 0, 0
	for _, m := range modules {
		if m.Quiz == nil {
			continue
		}
		if s, ok := best[m.Quiz.ID]; ok {
			sum += s
			count++
		}
	}
	return roundMean(sum, count), nil
}

func (i *Issuer) mainModuleEligibility(ctx context.Context, userID string, mainModuleID int64) (bool, int, string, error) {
	tree, err := i.engine.MainProgress(ctx, userID)
	if err != nil {
		return false, 0, "", err
	}
	for _, g := range tree {
		if g.ID == mainModuleID {
			return g.Completed, g.AverageForCertificate, g.Title, nil
		}
	}
	return false, 0, "", training.ErrMainModuleMissing
}

// GlobalStatus reports current eligibility for the all-modules
// certificate; a download URL is exposed only when a certificate exists
// AND the user is still eligible for it.
func (i *Issuer) GlobalStatus(ctx context.Context, userID string) (Status, error) {
	eligible, _, err := i.globalEligibility(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	_, exists, err := i.store.GetCertificate(ctx, userID, training.GlobalCertificate)
	if err != nil {
		return Status{}, err
	}
	st := Status{Eligible: eligible}
	if exists && eligible {
		st.URL = "/certificate/download"
	}
	return st, nil
}

// IssueGlobal renders the PDF and upserts the certificate record,
// overwriting any previous issue in place.
func (i *Issuer) IssueGlobal(ctx context.Context, user training.User) (string, error) {
	eligible, score, err := i.globalEligibility(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if !eligible {
		return "", ErrNotEligible
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	var buf bytes.Buffer
	if err := renderPDF(&buf, name, score, ""); err != nil {
		return "", fmt.Errorf("render certificate: %w", err)
	}
	key := safeName(user.Email) + ".pdf"
	path, err := i.files.Put(key, &buf)
	if err != nil {
		return "", fmt.Errorf("store certificate: %w", err)
	}
	if err := i.store.UpsertCertificate(ctx, training.Certificate{
		UserID:       user.ID,
		MainModuleID: training.GlobalCertificate,
		FilePath:     path,
		TotalScore:   score,
	}); err != nil {
		return "", err
	}
	return "/certificate/download", nil
}

func (i *Issuer) MainModuleStatus(ctx context.Context, userID string, mainModuleID int64) (Status, error) {
	eligible, _, _, err := i.mainModuleEligibility(ctx, userID, mainModuleID)
	if err != nil {
		return Status{}, err
	}
	_, exists, err := i.store.GetCertificate(ctx, userID, mainModuleID)
	if err != nil {
		return Status{}, err
	}
	st := Status{Eligible: eligible}
	if exists && eligible {
		st.URL = fmt.Sprintf("/main-modules/%d/certificate/download", mainModuleID)
	}
	return st, nil
}

func (i *Issuer) IssueForMainModule(ctx context.Context, user training.User, mainModuleID int64) (string, error) {
	eligible, score, title, err := i.mainModuleEligibility(ctx, user.ID, mainModuleID)
	if err != nil {
		return "", err
	}
	if !eligible {
		return "", ErrNotEligible
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	var buf bytes.Buffer
	if err := renderPDF(&buf, name, score, title); err != nil {
		return "", fmt.Errorf("render certificate: %w", err)
	}
	// distinct filename so the global certificate is never clobbered
	key := fmt.Sprintf("%s_main_%d.pdf", safeName(user.Email), mainModuleID)
	path, err := i.files.Put(key, &buf)
	if err != nil {
		return "", fmt.Errorf("store certificate: %w", err)
	}
	if err := i.store.UpsertCertificate(ctx, training.Certificate{
		UserID:       user.ID,
		MainModuleID: mainModuleID,
		FilePath:     path,
		TotalScore:   score,
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("/main-modules/%d/certificate/download", mainModuleID), nil
}

// Open returns the stored PDF for download, re-verifying eligibility
// first; a stale certificate row never serves a file.
func (i *Issuer) Open(ctx context.Context, userID string, mainModuleID int64) (io.ReadCloser, error) {
	var eligible bool
	var err error
	if mainModuleID == training.GlobalCertificate {
		eligible, _, err = i.globalEligibility(ctx, userID)
	} else {
		eligible, _, _, err = i.mainModuleEligibility(ctx, userID, mainModuleID)
	}
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotEligible
	}
	c, exists, err := i.store.GetCertificate(ctx, userID, mainModuleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotEligible
	}
	return os.Open(c.FilePath)
}

// Invalidate deletes every certificate for the user and unlinks the
// files. Called whenever attempts feeding eligibility are reset.
func (i *Issuer) Invalidate(ctx context.Context, userID string) error {
	rows, err := i.store.DeleteCertificates(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range rows {
		if c.FilePath == "" {
			continue
		}
		if err := i.files.Remove(c.FilePath); err != nil {
			return err
		}
	}
	return nil
}

func roundMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	// round half up; scores are non-negative
	return (sum + n/2) / n
}
