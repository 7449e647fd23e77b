package training

import (
	"context"
	"math"
	"sort"
)

type ModuleStatus string

const (
	StatusLocked  ModuleStatus = "LOCKED"
	StatusPending ModuleStatus = "PENDING"
	StatusPassed  ModuleStatus = "PASSED"
	StatusFailed  ModuleStatus = "FAILED"
)

// SubModuleProgress is one sub-module's derived state for one user.
type SubModuleProgress struct {
	ID              string       `json:"id"`
	Order           int          `json:"order"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	YouTubeID       string       `json:"youtube_id"`
	Status          ModuleStatus `json:"status"`
	AttemptsUsed    int          `json:"attempts_used"`
	LastScore       *int         `json:"last_score"`
	PassScore       int          `json:"pass_score"`
	MainModuleID    int64        `json:"main_module_id"`
	OrderWithinMain int          `json:"order_within_main"`
}

type MainModuleProgress struct {
	ID          int64               `json:"id"`
	OrderIndex  int                 `json:"order_index"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	YouTubeID   string              `json:"youtube_id"`
	Active      bool                `json:"active"`
	Completed   bool                `json:"completed"`
	SubModules  []SubModuleProgress `json:"sub_modules"`

	NextOpenSubModuleID    string `json:"next_open_sub_module_id,omitempty"`
	NextOpenSubModuleTitle string `json:"next_open_sub_module_title,omitempty"`

	// DashboardAverage averages last scores over attempted sub-modules
	// only; nil until something was attempted. AverageForCertificate
	// averages over every assigned sub-module, unattempted counting as 0.
	DashboardAverage      *int `json:"dashboard_average"`
	AverageForCertificate int  `json:"average_for_certificate"`
}

// ModuleProgress is the legacy flat-sequence item, used when no main
// modules exist at all.
type ModuleProgress struct {
	ID           string       `json:"id"`
	Order        int          `json:"order"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	YouTubeID    string       `json:"youtube_id"`
	Status       ModuleStatus `json:"status"`
	AttemptsUsed int          `json:"attempts_used"`
	LastScore    *int         `json:"last_score"`
	PassScore    int          `json:"pass_score"`
}

// quizStat is the per-(user,quiz) rollup derived from the attempt ledger.
type quizStat struct {
	attemptsUsed int
	lastScore    *int
	passed       bool
}

// statsByQuiz folds attempts (ordered by submission time ascending) into
// per-quiz stats. The last score reflects the most recent attempt.
func statsByQuiz(attempts []Attempt) map[string]quizStat {
	stats := make(map[string]quizStat)
	for _, a := range attempts {
		s := stats[a.QuizID]
		s.attemptsUsed++
		if a.AttemptNo > s.attemptsUsed {
			s.attemptsUsed = a.AttemptNo
		}
		score := a.Score
		s.lastScore = &score
		s.passed = s.passed || a.Passed
		stats[a.QuizID] = s
	}
	return stats
}

func statusFor(stat quizStat, gateOpen bool) ModuleStatus {
	switch {
	case stat.passed:
		return StatusPassed
	case !gateOpen:
		return StatusLocked
	case stat.attemptsUsed >= MaxAttempts:
		return StatusFailed
	default:
		return StatusPending
	}
}

// roundMean rounds half up; scores are never negative.
func roundMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// BuildMainModuleProgress derives the full per-user progress tree. Pure:
// same inputs always give the same output. Gates open strictly
// sequentially, both inside a group (order_within_main) and across groups
// (order_index); a main module with no assigned sub-modules neither
// completes nor blocks the chain.
func BuildMainModuleProgress(mains []MainModule, assigned []ModuleWithQuiz, attempts []Attempt) []MainModuleProgress {
	mains = append([]MainModule(nil), mains...)
	sort.SliceStable(mains, func(i, j int) bool { return mains[i].OrderIndex < mains[j].OrderIndex })

	byGroup := make(map[int64][]ModuleWithQuiz)
	for _, m := range assigned {
		if m.MainModuleID == nil {
			continue
		}
		byGroup[*m.MainModuleID] = append(byGroup[*m.MainModuleID], m)
	}
	for id := range byGroup {
		g := byGroup[id]
		sort.SliceStable(g, func(i, j int) bool {
			oi, oj := 0, 0
			if g[i].OrderWithinMain != nil {
				oi = *g[i].OrderWithinMain
			}
			if g[j].OrderWithinMain != nil {
				oj = *g[j].OrderWithinMain
			}
			return oi < oj
		})
		byGroup[id] = g
	}

	stats := statsByQuiz(attempts)

	result := make([]MainModuleProgress, 0, len(mains))
	previousGroupsCompleted := true
	for _, g := range mains {
		list := byGroup[g.ID]
		subs := make([]SubModuleProgress, 0, len(list))

		allPassed := true
		gateOpen := previousGroupsCompleted
		var nextID, nextTitle string
		scoreSum := 0
		attemptedCount := 0

		for _, m := range list {
			var stat quizStat
			passScore := DefaultPassScore
			if m.Quiz != nil {
				stat = stats[m.Quiz.ID]
				passScore = m.Quiz.PassScore
			}
			status := statusFor(stat, gateOpen)

			if status == StatusPending && nextID == "" {
				nextID, nextTitle = m.ID, m.Title
			}
			if stat.lastScore != nil {
				scoreSum += *stat.lastScore
				attemptedCount++
			}
			if !stat.passed {
				gateOpen = false
				allPassed = false
			}

			within := 0
			if m.OrderWithinMain != nil {
				within = *m.OrderWithinMain
			}
			subs = append(subs, SubModuleProgress{
				ID:              m.ID,
				Order:           m.SortOrder,
				Title:           m.Title,
				Description:     m.Description,
				YouTubeID:       m.YouTubeID,
				Status:          status,
				AttemptsUsed:    stat.attemptsUsed,
				LastScore:       stat.lastScore,
				PassScore:       passScore,
				MainModuleID:    g.ID,
				OrderWithinMain: within,
			})
		}

		var dashboard *int
		if attemptedCount > 0 {
			v := roundMean(scoreSum, attemptedCount)
			dashboard = &v
		}
		completed := allPassed && len(list) > 0

		result = append(result, MainModuleProgress{
			ID:                     g.ID,
			OrderIndex:             g.OrderIndex,
			Title:                  g.Title,
			Description:            g.Description,
			YouTubeID:              g.YouTubeID,
			Active:                 g.Active,
			Completed:              completed,
			SubModules:             subs,
			NextOpenSubModuleID:    nextID,
			NextOpenSubModuleTitle: nextTitle,
			DashboardAverage:       dashboard,
			AverageForCertificate:  roundMean(scoreSum, len(list)),
		})

		previousGroupsCompleted = previousGroupsCompleted && (allPassed || len(list) == 0)
	}
	return result
}

// BuildLegacyProgress derives the flat global sequence used when no main
// modules exist: every module in legacy order, one sequential gate.
func BuildLegacyProgress(modules []ModuleWithQuiz, attempts []Attempt) []ModuleProgress {
	modules = append([]ModuleWithQuiz(nil), modules...)
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].SortOrder < modules[j].SortOrder })

	stats := statsByQuiz(attempts)

	items := make([]ModuleProgress, 0, len(modules))
	allPreviousPassed := true
	for _, m := range modules {
		var stat quizStat
		passScore := DefaultPassScore
		if m.Quiz != nil {
			stat = stats[m.Quiz.ID]
			passScore = m.Quiz.PassScore
		}
		status := statusFor(stat, allPreviousPassed)
		if !stat.passed {
			allPreviousPassed = false
		}
		items = append(items, ModuleProgress{
			ID:           m.ID,
			Order:        m.SortOrder,
			Title:        m.Title,
			Description:  m.Description,
			YouTubeID:    m.YouTubeID,
			Status:       status,
			AttemptsUsed: stat.attemptsUsed,
			LastScore:    stat.lastScore,
			PassScore:    passScore,
		})
	}
	return items
}

// Engine computes per-user progress on demand. Status is never stored;
// every call recomputes from the current attempt ledger.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine { return &Engine{store: store} }

func (e *Engine) MainProgress(ctx context.Context, userID string) ([]MainModuleProgress, error) {
	mains, err := e.store.ListMainModules(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := e.store.ListAssignedModules(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := e.store.ListAttempts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildMainModuleProgress(mains, assigned, attempts), nil
}

func (e *Engine) LegacyProgress(ctx context.Context, userID string) ([]ModuleProgress, error) {
	modules, err := e.store.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := e.store.ListAttempts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildLegacyProgress(modules, attempts), nil
}

// LegacyMode reports whether the system has no main modules at all, in
// which case the flat global sequence governs gating.
func (e *Engine) LegacyMode(ctx context.Context) (bool, error) {
	mains, err := e.store.ListMainModules(ctx)
	if err != nil {
		return false, err
	}
	return len(mains) == 0, nil
}
