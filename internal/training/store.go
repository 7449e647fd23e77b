package training

import "context"

// Store is the persistence boundary for the training domain. The progress
// engine and evaluator only ever read through it; all writes are explicit
// admin or submission operations.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetUserDisabled(ctx context.Context, id string, disabled bool) error

	// Main modules
	CreateMainModule(ctx context.Context, m MainModule) (MainModule, error)
	UpdateMainModule(ctx context.Context, m MainModule) error
	DeleteMainModule(ctx context.Context, id int64) error
	ListMainModules(ctx context.Context) ([]MainModule, error)

	// Sub-modules
	CreateModule(ctx context.Context, m Module) error
	UpdateModule(ctx context.Context, m Module) error
	DeleteModule(ctx context.Context, id string) error
	GetModule(ctx context.Context, id string) (Module, error)
	// ListModules returns every module with its quiz (nil if none), in
	// legacy sort order.
	ListModules(ctx context.Context) ([]ModuleWithQuiz, error)
	// ListAssignedModules returns modules assigned to any main module,
	// ordered by (main_module_id, order_within_main).
	ListAssignedModules(ctx context.Context) ([]ModuleWithQuiz, error)
	ListUnassignedModules(ctx context.Context) ([]Module, error)
	// AssignModules sets the given ordered list as the full membership of
	// the main module: listed modules get order_within_main 1..n, modules
	// previously in the group but absent from the list are unlinked.
	AssignModules(ctx context.Context, mainModuleID int64, moduleIDs []string) error
	// ReorderModules renumbers legacy sort_order to 1..n following the
	// given id order.
	ReorderModules(ctx context.Context, moduleIDs []string) error

	// Quizzes and questions
	GetQuizByModule(ctx context.Context, moduleID string) (Quiz, error)
	// EnsureQuiz returns the module's quiz, creating one with the default
	// pass score if the module has none yet.
	EnsureQuiz(ctx context.Context, moduleID string) (Quiz, error)
	UpdateQuiz(ctx context.Context, q Quiz) error
	CreateQuestion(ctx context.Context, q Question) error
	UpdateQuestion(ctx context.Context, q Question) error
	DeleteQuestion(ctx context.Context, id string) error
	ListQuestions(ctx context.Context, quizID string) ([]Question, error)
	ListActiveQuestions(ctx context.Context, quizID string) ([]Question, error)

	// Attempts
	// ListAttempts returns the user's attempts ordered by submitted_at
	// ascending.
	ListAttempts(ctx context.Context, userID string) ([]Attempt, error)
	// CreateAttempt assigns the next attempt_no for (user, quiz) and
	// inserts atomically. Concurrent submissions are serialized by the
	// unique (user_id, quiz_id, attempt_no) index; exceeding the attempt
	// cap yields ErrNoAttemptsLeft.
	CreateAttempt(ctx context.Context, userID, quizID string, score int, passed bool, answers []Answer) (Attempt, error)
	DeleteAttempts(ctx context.Context, userID string, quizIDs []string) error

	// Certificates
	UpsertCertificate(ctx context.Context, c Certificate) error
	GetCertificate(ctx context.Context, userID string, mainModuleID int64) (Certificate, bool, error)
	// DeleteCertificates removes every certificate for the user and
	// returns the deleted rows so callers can unlink the files.
	DeleteCertificates(ctx context.Context, userID string) ([]Certificate, error)

	// Import audit trail
	RecordImport(ctx context.Context, rec ImportRecord) error
}
