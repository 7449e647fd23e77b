package training_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traingate/traingate/internal/training"
)

func intp(v int) *int     { return &v }
func i64p(v int64) *int64 { return &v }

func mod(id string, main int64, within int, quizID string, passScore int) training.ModuleWithQuiz {
	return training.ModuleWithQuiz{
		Module: training.Module{
			ID:              id,
			Title:           "Module " + id,
			MainModuleID:    i64p(main),
			OrderWithinMain: intp(within),
		},
		Quiz: &training.Quiz{ID: quizID, ModuleID: id, PassScore: passScore},
	}
}

func attempt(quizID string, no, score int, passed bool, at int64) training.Attempt {
	return training.Attempt{
		ID: quizID + "-a", UserID: "u1", QuizID: quizID,
		AttemptNo: no, Score: score, Passed: passed, SubmittedAt: at,
	}
}

func twoGroups() ([]training.MainModule, []training.ModuleWithQuiz) {
	mains := []training.MainModule{
		{ID: 1, OrderIndex: 1, Title: "Basics", Active: true},
		{ID: 2, OrderIndex: 2, Title: "Advanced", Active: true},
	}
	assigned := []training.ModuleWithQuiz{
		mod("a", 1, 1, "qa", 70),
		mod("b", 1, 2, "qb", 70),
		mod("c", 1, 3, "qc", 70),
		mod("d", 2, 1, "qd", 70),
	}
	return mains, assigned
}

func TestSequentialUnlockWithinGroup(t *testing.T) {
	mains, assigned := twoGroups()

	// Fresh user: only the first sub-module of the first group is open.
	tree := training.BuildMainModuleProgress(mains, assigned, nil)
	require.Len(t, tree, 2)
	require.Equal(t, training.StatusPending, tree[0].SubModules[0].Status)
	require.Equal(t, training.StatusLocked, tree[0].SubModules[1].Status)
	require.Equal(t, training.StatusLocked, tree[0].SubModules[2].Status)
	require.Equal(t, training.StatusLocked, tree[1].SubModules[0].Status)
	require.Equal(t, "a", tree[0].NextOpenSubModuleID)
	require.False(t, tree[0].Completed)

	// Passing "a" opens exactly the next one.
	tree = training.BuildMainModuleProgress(mains, assigned, []training.Attempt{
		attempt("qa", 1, 90, true, 100),
	})
	require.Equal(t, training.StatusPassed, tree[0].SubModules[0].Status)
	require.Equal(t, training.StatusPending, tree[0].SubModules[1].Status)
	require.Equal(t, training.StatusLocked, tree[0].SubModules[2].Status)
	require.Equal(t, "b", tree[0].NextOpenSubModuleID)
}

func TestFailedModuleBlocksDownstream(t *testing.T) {
	mains, assigned := twoGroups()
	tree := training.BuildMainModuleProgress(mains, assigned, []training.Attempt{
		attempt("qa", 1, 50, false, 100),
		attempt("qa", 2, 60, false, 200),
	})
	require.Equal(t, training.StatusFailed, tree[0].SubModules[0].Status)
	require.Equal(t, training.StatusLocked, tree[0].SubModules[1].Status)
	require.Equal(t, training.StatusLocked, tree[1].SubModules[0].Status)
	require.Empty(t, tree[0].NextOpenSubModuleID)

	// The most recent attempt's score is reported.
	require.Equal(t, 2, tree[0].SubModules[0].AttemptsUsed)
	require.NotNil(t, tree[0].SubModules[0].LastScore)
	require.Equal(t, 60, *tree[0].SubModules[0].LastScore)
}

func TestGroupCompletionOpensNextGroup(t *testing.T) {
	mains, assigned := twoGroups()
	tree := training.BuildMainModuleProgress(mains, assigned, []training.Attempt{
		attempt("qa", 1, 80, true, 100),
		attempt("qb", 1, 90, true, 200),
		attempt("qc", 1, 70, true, 300),
	})
	require.True(t, tree[0].Completed)
	require.Equal(t, training.StatusPending, tree[1].SubModules[0].Status)
	require.Equal(t, "d", tree[1].NextOpenSubModuleID)
	require.False(t, tree[1].Completed)
}

func TestEmptyGroupNeitherCompletesNorBlocks(t *testing.T) {
	mains := []training.MainModule{
		{ID: 1, OrderIndex: 1, Title: "First"},
		{ID: 2, OrderIndex: 2, Title: "Empty"},
		{ID: 3, OrderIndex: 3, Title: "Third"},
	}
	assigned := []training.ModuleWithQuiz{
		mod("a", 1, 1, "qa", 70),
		mod("z", 3, 1, "qz", 70),
	}
	tree := training.BuildMainModuleProgress(mains, assigned, []training.Attempt{
		attempt("qa", 1, 100, true, 100),
	})
	require.True(t, tree[0].Completed)
	require.False(t, tree[1].Completed) // empty group is never "completed"
	require.Equal(t, training.StatusPending, tree[2].SubModules[0].Status)
}

func TestAverages(t *testing.T) {
	mains, assigned := twoGroups()

	// One of three sub-modules attempted at 80: the dashboard averages
	// attempted ones only, the certificate average counts all three.
	tree := training.BuildMainModuleProgress(mains, assigned, []training.Attempt{
		attempt("qa", 1, 80, true, 100),
	})
	require.NotNil(t, tree[0].DashboardAverage)
	require.Equal(t, 80, *tree[0].DashboardAverage)
	require.Equal(t, 27, tree[0].AverageForCertificate)

	// Nothing attempted: dashboard average is absent, not zero.
	tree = training.BuildMainModuleProgress(mains, assigned, nil)
	require.Nil(t, tree[0].DashboardAverage)
	require.Equal(t, 0, tree[0].AverageForCertificate)
}

func TestRetakeAfterFailUsesLatestScore(t *testing.T) {
	mains, assigned := twoGroups()
	tree := training.BuildMainModuleProgress(mains, assigned, []training.Attempt{
		attempt("qa", 1, 40, false, 100),
		attempt("qa", 2, 80, true, 200),
	})
	sub := tree[0].SubModules[0]
	require.Equal(t, training.StatusPassed, sub.Status)
	require.Equal(t, 2, sub.AttemptsUsed)
	require.Equal(t, 80, *sub.LastScore)
}

func TestBuildIsDeterministic(t *testing.T) {
	mains, assigned := twoGroups()
	attempts := []training.Attempt{
		attempt("qa", 1, 80, true, 100),
		attempt("qb", 1, 50, false, 200),
	}
	first := training.BuildMainModuleProgress(mains, assigned, attempts)
	second := training.BuildMainModuleProgress(mains, assigned, attempts)
	require.Equal(t, first, second)
}

func TestMainModulesSortedByOrderIndex(t *testing.T) {
	mains := []training.MainModule{
		{ID: 9, OrderIndex: 2, Title: "Second"},
		{ID: 3, OrderIndex: 1, Title: "First"},
	}
	tree := training.BuildMainModuleProgress(mains, nil, nil)
	require.Equal(t, int64(3), tree[0].ID)
	require.Equal(t, int64(9), tree[1].ID)
}

func TestLegacyProgressFlatSequence(t *testing.T) {
	modules := []training.ModuleWithQuiz{
		{Module: training.Module{ID: "m2", SortOrder: 2, Title: "Two"},
			Quiz: &training.Quiz{ID: "q2", ModuleID: "m2", PassScore: 70}},
		{Module: training.Module{ID: "m1", SortOrder: 1, Title: "One"},
			Quiz: &training.Quiz{ID: "q1", ModuleID: "m1", PassScore: 70}},
		{Module: training.Module{ID: "m3", SortOrder: 3, Title: "Three"},
			Quiz: &training.Quiz{ID: "q3", ModuleID: "m3", PassScore: 70}},
	}

	items := training.BuildLegacyProgress(modules, nil)
	require.Equal(t, "m1", items[0].ID)
	require.Equal(t, training.StatusPending, items[0].Status)
	require.Equal(t, training.StatusLocked, items[1].Status)
	require.Equal(t, training.StatusLocked, items[2].Status)

	items = training.BuildLegacyProgress(modules, []training.Attempt{
		attempt("q1", 1, 100, true, 100),
		attempt("q2", 1, 30, false, 200),
		attempt("q2", 2, 40, false, 300),
	})
	require.Equal(t, training.StatusPassed, items[0].Status)
	require.Equal(t, training.StatusFailed, items[1].Status)
	require.Equal(t, training.StatusLocked, items[2].Status)
}

func TestModuleWithoutQuizFallsBackToDefaultPassScore(t *testing.T) {
	modules := []training.ModuleWithQuiz{
		{Module: training.Module{ID: "m1", SortOrder: 1, Title: "One"}},
	}
	items := training.BuildLegacyProgress(modules, nil)
	require.Equal(t, training.DefaultPassScore, items[0].PassScore)
	require.Equal(t, training.StatusPending, items[0].Status)
}
