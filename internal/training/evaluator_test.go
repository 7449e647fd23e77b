package training_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/traingate/traingate/internal/training"
)

/* ---------------- In-memory fake satisfying training.Store ---------------- */

type fakeStore struct {
	users     map[string]training.User
	mains     []training.MainModule
	modules   map[string]training.Module
	assigned  []training.ModuleWithQuiz
	quizzes   map[string]training.Quiz // keyed by module id
	questions map[string][]training.Question
	attempts  []training.Attempt
	now       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]training.User{},
		modules:   map[string]training.Module{},
		quizzes:   map[string]training.Quiz{},
		questions: map[string][]training.Question{},
	}
}

// addModule registers a module assigned to a main module, with a quiz.
func (s *fakeStore) addModule(id string, main int64, within int, passScore int) {
	m := training.Module{ID: id, Title: "Module " + id, MainModuleID: &main, OrderWithinMain: &within}
	s.modules[id] = m
	q := training.Quiz{ID: "quiz-" + id, ModuleID: id, PassScore: passScore}
	s.quizzes[id] = q
	s.assigned = append(s.assigned, training.ModuleWithQuiz{Module: m, Quiz: &q})
}

func (s *fakeStore) addQuestion(moduleID string, correctIndex int, active bool) string {
	q := s.quizzes[moduleID]
	id := fmt.Sprintf("%s-q%d", q.ID, len(s.questions[q.ID])+1)
	s.questions[q.ID] = append(s.questions[q.ID], training.Question{
		ID: id, QuizID: q.ID, Text: "?", Options: []string{"x", "y", "z"},
		CorrectIndex: correctIndex, Active: active,
	})
	return id
}

func (s *fakeStore) CreateUser(_ context.Context, u training.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, id string) (training.User, error) {
	u, ok := s.users[id]
	if !ok {
		return training.User{}, training.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (training.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return training.User{}, training.ErrUserNotFound
}

func (s *fakeStore) ListUsers(_ context.Context) ([]training.User, error) { return nil, nil }

func (s *fakeStore) SetUserDisabled(_ context.Context, _ string, _ bool) error { return nil }

func (s *fakeStore) CreateMainModule(_ context.Context, m training.MainModule) (training.MainModule, error) {
	s.mains = append(s.mains, m)
	return m, nil
}

func (s *fakeStore) UpdateMainModule(_ context.Context, _ training.MainModule) error { return nil }

func (s *fakeStore) DeleteMainModule(_ context.Context, _ int64) error { return nil }

func (s *fakeStore) ListMainModules(_ context.Context) ([]training.MainModule, error) {
	return s.mains, nil
}

func (s *fakeStore) CreateModule(_ context.Context, m training.Module) error {
	s.modules[m.ID] = m
	return nil
}

func (s *fakeStore) UpdateModule(_ context.Context, _ training.Module) error { return nil }

func (s *fakeStore) DeleteModule(_ context.Context, _ string) error { return nil }

func (s *fakeStore) GetModule(_ context.Context, id string) (training.Module, error) {
	m, ok := s.modules[id]
	if !ok {
		return training.Module{}, training.ErrModuleNotFound
	}
	return m, nil
}

func (s *fakeStore) ListModules(_ context.Context) ([]training.ModuleWithQuiz, error) {
	return s.assigned, nil
}

func (s *fakeStore) ListAssignedModules(_ context.Context) ([]training.ModuleWithQuiz, error) {
	return s.assigned, nil
}

func (s *fakeStore) ListUnassignedModules(_ context.Context) ([]training.Module, error) {
	return nil, nil
}

func (s *fakeStore) AssignModules(_ context.Context, _ int64, _ []string) error { return nil }

func (s *fakeStore) ReorderModules(_ context.Context, _ []string) error { return nil }

func (s *fakeStore) GetQuizByModule(_ context.Context, moduleID string) (training.Quiz, error) {
	q, ok := s.quizzes[moduleID]
	if !ok {
		return training.Quiz{}, training.ErrQuizNotFound
	}
	return q, nil
}

func (s *fakeStore) EnsureQuiz(ctx context.Context, moduleID string) (training.Quiz, error) {
	return s.GetQuizByModule(ctx, moduleID)
}

func (s *fakeStore) UpdateQuiz(_ context.Context, _ training.Quiz) error { return nil }

func (s *fakeStore) CreateQuestion(_ context.Context, q training.Question) error {
	s.questions[q.QuizID] = append(s.questions[q.QuizID], q)
	return nil
}

func (s *fakeStore) UpdateQuestion(_ context.Context, _ training.Question) error { return nil }

func (s *fakeStore) DeleteQuestion(_ context.Context, _ string) error { return nil }

func (s *fakeStore) ListQuestions(_ context.Context, quizID string) ([]training.Question, error) {
	return s.questions[quizID], nil
}

func (s *fakeStore) ListActiveQuestions(_ context.Context, quizID string) ([]training.Question, error) {
	var out []training.Question
	for _, q := range s.questions[quizID] {
		if q.Active {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAttempts(_ context.Context, userID string) ([]training.Attempt, error) {
	var out []training.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateAttempt(_ context.Context, userID, quizID string, score int, passed bool, answers []training.Answer) (training.Attempt, error) {
	prior := 0
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuizID == quizID && a.AttemptNo > prior {
			prior = a.AttemptNo
		}
	}
	if prior+1 > training.MaxAttempts {
		return training.Attempt{}, training.ErrNoAttemptsLeft
	}
	s.now++
	a := training.Attempt{
		ID: fmt.Sprintf("att-%d", s.now), UserID: userID, QuizID: quizID,
		AttemptNo: prior + 1, Score: score, Passed: passed, Answers: answers, SubmittedAt: s.now,
	}
	s.attempts = append(s.attempts, a)
	return a, nil
}

func (s *fakeStore) DeleteAttempts(_ context.Context, _ string, _ []string) error { return nil }

func (s *fakeStore) UpsertCertificate(_ context.Context, _ training.Certificate) error { return nil }

func (s *fakeStore) GetCertificate(_ context.Context, _ string, _ int64) (training.Certificate, bool, error) {
	return training.Certificate{}, false, nil
}

func (s *fakeStore) DeleteCertificates(_ context.Context, _ string) ([]training.Certificate, error) {
	return nil, nil
}

func (s *fakeStore) RecordImport(_ context.Context, _ training.ImportRecord) error { return nil }

/* ---------------- Tests ---------------- */

func newEvalFixture() (*fakeStore, *training.Evaluator) {
	store := newFakeStore()
	store.mains = []training.MainModule{{ID: 1, OrderIndex: 1, Title: "Basics", Active: true}}
	store.addModule("a", 1, 1, 70)
	store.addModule("b", 1, 2, 70)
	engine := training.NewEngine(store)
	return store, training.NewEvaluator(store, engine)
}

func TestSubmitScoringAndRounding(t *testing.T) {
	store, ev := newEvalFixture()
	var ids []string
	for i := 0; i < 7; i++ {
		ids = append(ids, store.addQuestion("a", 0, true))
	}

	// 3 correct, 2 wrong, 2 unanswered: 3/7 rounds to 43.
	answers := []training.Answer{
		{QuestionID: ids[0], OptionKey: intp(0)},
		{QuestionID: ids[1], OptionKey: intp(0)},
		{QuestionID: ids[2], OptionKey: intp(0)},
		{QuestionID: ids[3], OptionKey: intp(1)},
		{QuestionID: ids[4], OptionKey: intp(2)},
		{QuestionID: ids[5], OptionKey: nil},
		{QuestionID: ids[6], OptionKey: nil},
	}
	res, err := ev.Submit(context.Background(), "u1", "a", answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 43 {
		t.Fatalf("score = %d, want 43", res.Score)
	}
	if res.Passed {
		t.Fatalf("43 should not pass at threshold 70")
	}
	if res.TotalQuestions != 7 || res.TotalAnswered != 5 || res.TotalCorrect != 3 || res.TotalWrong != 2 {
		t.Fatalf("totals = %d/%d/%d/%d", res.TotalQuestions, res.TotalAnswered, res.TotalCorrect, res.TotalWrong)
	}
	if res.AttemptNo != 1 || res.AttemptsRemaining != 1 {
		t.Fatalf("attempt_no=%d remaining=%d", res.AttemptNo, res.AttemptsRemaining)
	}
}

func TestSubmitPassAtExactThreshold(t *testing.T) {
	store, ev := newEvalFixture()
	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, store.addQuestion("a", 0, true))
	}
	var answers []training.Answer
	for i, id := range ids {
		key := 0
		if i >= 7 {
			key = 1 // wrong
		}
		answers = append(answers, training.Answer{QuestionID: id, OptionKey: intp(key)})
	}
	res, err := ev.Submit(context.Background(), "u1", "a", answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 70 || !res.Passed {
		t.Fatalf("score=%d passed=%v, want exactly 70 to pass", res.Score, res.Passed)
	}
}

func TestSubmitIgnoresInactiveAndUnknownQuestions(t *testing.T) {
	store, ev := newEvalFixture()
	active1 := store.addQuestion("a", 0, true)
	active2 := store.addQuestion("a", 1, true)
	inactive := store.addQuestion("a", 0, false)

	answers := []training.Answer{
		{QuestionID: active1, OptionKey: intp(0)},
		{QuestionID: active2, OptionKey: intp(1)},
		{QuestionID: inactive, OptionKey: intp(0)},
		{QuestionID: "no-such-question", OptionKey: intp(0)},
	}
	res, err := ev.Submit(context.Background(), "u1", "a", answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 100 || res.TotalQuestions != 2 || res.TotalAnswered != 2 {
		t.Fatalf("score=%d total=%d answered=%d, want 100/2/2", res.Score, res.TotalQuestions, res.TotalAnswered)
	}
}

func TestSubmitLockedModuleRejected(t *testing.T) {
	store, ev := newEvalFixture()
	store.addQuestion("b", 0, true)

	_, err := ev.Submit(context.Background(), "u1", "b", nil)
	var gate *training.GateClosedError
	if !errors.As(err, &gate) {
		t.Fatalf("want GateClosedError, got %v", err)
	}
	if gate.Reason != training.ReasonLocked {
		t.Fatalf("reason = %q", gate.Reason)
	}
}

func TestSubmitAlreadyPassedRejected(t *testing.T) {
	store, ev := newEvalFixture()
	id := store.addQuestion("a", 0, true)
	answers := []training.Answer{{QuestionID: id, OptionKey: intp(0)}}

	if _, err := ev.Submit(context.Background(), "u1", "a", answers); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := ev.Submit(context.Background(), "u1", "a", answers)
	var gate *training.GateClosedError
	if !errors.As(err, &gate) || gate.Reason != training.ReasonAlreadyPassed {
		t.Fatalf("want already-passed gate error, got %v", err)
	}
}

func TestSubmitAttemptCapExhausted(t *testing.T) {
	store, ev := newEvalFixture()
	id := store.addQuestion("a", 0, true)
	wrong := []training.Answer{{QuestionID: id, OptionKey: intp(1)}}

	for i := 0; i < 2; i++ {
		res, err := ev.Submit(context.Background(), "u1", "a", wrong)
		if err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
		if res.Passed {
			t.Fatalf("wrong answer passed")
		}
	}
	_, err := ev.Submit(context.Background(), "u1", "a", wrong)
	var gate *training.GateClosedError
	if !errors.As(err, &gate) || gate.Reason != training.ReasonNoAttemptsLeft {
		t.Fatalf("want no-attempts-left gate error, got %v", err)
	}
}

func TestSubmitNoActiveQuestions(t *testing.T) {
	store, ev := newEvalFixture()
	store.addQuestion("a", 0, false) // only an inactive question

	_, err := ev.Submit(context.Background(), "u1", "a", nil)
	if !errors.Is(err, training.ErrNoActiveQuestions) {
		t.Fatalf("want ErrNoActiveQuestions, got %v", err)
	}
}

func TestSubmitUnknownModule(t *testing.T) {
	_, ev := newEvalFixture()
	_, err := ev.Submit(context.Background(), "u1", "nope", nil)
	var gate *training.GateClosedError
	if !errors.As(err, &gate) || gate.Reason != training.ReasonModuleNotFound {
		t.Fatalf("want module-not-found gate error, got %v", err)
	}
}

func TestAccessibleAfterFailOut(t *testing.T) {
	store, ev := newEvalFixture()
	id := store.addQuestion("a", 0, true)
	wrong := []training.Answer{{QuestionID: id, OptionKey: intp(1)}}
	engine := training.NewEngine(store)

	for i := 0; i < 2; i++ {
		if _, err := ev.Submit(context.Background(), "u1", "a", wrong); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	// Video stays watchable after the quiz is failed out; only the quiz is gone.
	ok, err := engine.IsModuleAccessible(context.Background(), "u1", "a")
	if err != nil || !ok {
		t.Fatalf("failed module should stay accessible: ok=%v err=%v", ok, err)
	}
	d, err := engine.CanAttemptQuiz(context.Background(), "u1", "a")
	if err != nil {
		t.Fatalf("can-attempt: %v", err)
	}
	if d.Allowed || d.Reason != training.ReasonNoAttemptsLeft {
		t.Fatalf("decision = %+v", d)
	}
}
