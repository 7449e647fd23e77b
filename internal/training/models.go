package training

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Disabled     bool   `json:"disabled"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// MainModule is a top-level curriculum unit holding an ordered group of
// sub-modules. OrderIndex is a contiguous 1-based total order.
type MainModule struct {
	ID          int64  `json:"id"`
	OrderIndex  int    `json:"order_index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	YouTubeID   string `json:"youtube_id"`
	Active      bool   `json:"active"`
}

// Module is a single video+quiz unit. SortOrder is the legacy global
// ordering, used only when no main modules exist. OrderWithinMain is the
// 1-based position among siblings when assigned to a main module; both
// assignment fields are nil for unassigned modules.
type Module struct {
	ID              string `json:"id"`
	SortOrder       int    `json:"order"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	YouTubeID       string `json:"youtube_id"`
	MainModuleID    *int64 `json:"main_module_id,omitempty"`
	OrderWithinMain *int   `json:"order_within_main,omitempty"`
}

type Quiz struct {
	ID               string `json:"id"`
	ModuleID         string `json:"module_id"`
	PassScore        int    `json:"pass_score"`
	TimeLimitSeconds *int   `json:"time_limit_seconds,omitempty"`
}

type Question struct {
	ID           string   `json:"id"`
	QuizID       string   `json:"quiz_id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Active       bool     `json:"active"`
	// Set by bulk import: MCQ_4, MCQ_2 or TRUE_FALSE plus the letter answer.
	QuestionType  string `json:"question_type,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// Answer is one submitted answer. A nil OptionKey means the question was
// left unanswered; it still counts against the score denominator.
type Answer struct {
	QuestionID string `json:"question_id"`
	OptionKey  *int   `json:"option_key"`
}

// Attempt is one scored quiz submission. Attempts are immutable once
// created; admins may delete them wholesale via reset, never edit them.
type Attempt struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	QuizID      string   `json:"quiz_id"`
	AttemptNo   int      `json:"attempt_no"`
	Score       int      `json:"score"`
	Passed      bool     `json:"passed"`
	Answers     []Answer `json:"answers"`
	SubmittedAt int64    `json:"submitted_at"`
}

// GlobalCertificate is the MainModuleID value of the all-main-modules
// certificate; per-main-module certificates carry the main module id.
const GlobalCertificate int64 = 0

type Certificate struct {
	UserID       string `json:"user_id"`
	MainModuleID int64  `json:"main_module_id"`
	FilePath     string `json:"file_path"`
	TotalScore   int    `json:"total_score"`
	IssuedAt     int64  `json:"issued_at"`
}

// ModuleWithQuiz pairs a module with its quiz, when one exists. Quizzes
// are created lazily, so Quiz may be nil for modules never opened.
type ModuleWithQuiz struct {
	Module
	Quiz *Quiz `json:"quiz,omitempty"`
}

type ImportRecord struct {
	ID         string `json:"id"`
	UploadedBy string `json:"uploaded_by"`
	FileName   string `json:"file_name"`
	Total      int    `json:"total"`
	Imported   int    `json:"imported"`
	Failed     int    `json:"failed"`
	ErrorLog   string `json:"error_log"`
	CreatedAt  int64  `json:"created_at"`
}
