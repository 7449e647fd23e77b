package training

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPassScore = 70
	MaxAttempts      = 2
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// ---- users ----

func (s *SQLStore) CreateUser(ctx context.Context, u User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,name,email,role,disabled,password_hash,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Name, u.Email, string(u.Role), u.Disabled, u.PasswordHash, u.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id,name,email,role,disabled,password_hash,created_at FROM users WHERE id=$1`, id))
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id,name,email,role,disabled,password_hash,created_at FROM users WHERE email=$1`, email))
}

func (s *SQLStore) scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Disabled, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,email,role,disabled,password_hash,created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Disabled, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetUserDisabled(ctx context.Context, id string, disabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET disabled=$1 WHERE id=$2`, disabled, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ---- main modules ----

func (s *SQLStore) CreateMainModule(ctx context.Context, m MainModule) (MainModule, error) {
	if m.OrderIndex == 0 {
		// append at the end of the total order
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(order_index),0)+1 FROM main_modules`).Scan(&m.OrderIndex); err != nil {
			return MainModule{}, err
		}
	}
	switch s.driver {
	case "postgres":
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO main_modules (order_index,title,description,youtube_id,active) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			m.OrderIndex, m.Title, m.Description, m.YouTubeID, m.Active).Scan(&m.ID)
		if err != nil {
			return MainModule{}, err
		}
	default:
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO main_modules (order_index,title,description,youtube_id,active) VALUES ($1,$2,$3,$4,$5)`,
			m.OrderIndex, m.Title, m.Description, m.YouTubeID, m.Active)
		if err != nil {
			return MainModule{}, err
		}
		m.ID, err = res.LastInsertId()
		if err != nil {
			return MainModule{}, err
		}
	}
	return m, nil
}

func (s *SQLStore) UpdateMainModule(ctx context.Context, m MainModule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE main_modules SET order_index=$1, title=$2, description=$3, youtube_id=$4, active=$5 WHERE id=$6`,
		m.OrderIndex, m.Title, m.Description, m.YouTubeID, m.Active, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMainModuleMissing
	}
	return nil
}

func (s *SQLStore) DeleteMainModule(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`UPDATE modules SET main_module_id=NULL, order_within_main=NULL WHERE main_module_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM main_modules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMainModuleMissing
	}
	return tx.Commit()
}

func (s *SQLStore) ListMainModules(ctx context.Context) ([]MainModule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,order_index,title,description,youtube_id,active FROM main_modules ORDER BY order_index, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MainModule
	for rows.Next() {
		var m MainModule
		if err := rows.Scan(&m.ID, &m.OrderIndex, &m.Title, &m.Description, &m.YouTubeID, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- sub-modules ----

func (s *SQLStore) CreateModule(ctx context.Context, m Module) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SortOrder == 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order),0)+1 FROM modules`).Scan(&m.SortOrder); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id,sort_order,title,description,youtube_id,main_module_id,order_within_main) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.SortOrder, m.Title, m.Description, m.YouTubeID, nullInt64(m.MainModuleID), nullInt(m.OrderWithinMain))
	return err
}

func (s *SQLStore) UpdateModule(ctx context.Context, m Module) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET sort_order=$1, title=$2, description=$3, youtube_id=$4 WHERE id=$5`,
		m.SortOrder, m.Title, m.Description, m.YouTubeID, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModuleNotFound
	}
	return nil
}

func (s *SQLStore) DeleteModule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModuleNotFound
	}
	return nil
}

func (s *SQLStore) GetModule(ctx context.Context, id string) (Module, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,sort_order,title,description,youtube_id,main_module_id,order_within_main FROM modules WHERE id=$1`, id)
	m, err := scanModule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Module{}, ErrModuleNotFound
		}
		return Module{}, err
	}
	return m, nil
}

func scanModule(scan func(dest ...any) error) (Module, error) {
	var m Module
	var mainID sql.NullInt64
	var within sql.NullInt64
	if err := scan(&m.ID, &m.SortOrder, &m.Title, &m.Description, &m.YouTubeID, &mainID, &within); err != nil {
		return Module{}, err
	}
	if mainID.Valid {
		v := mainID.Int64
		m.MainModuleID = &v
	}
	if within.Valid {
		v := int(within.Int64)
		m.OrderWithinMain = &v
	}
	return m, nil
}

const moduleWithQuizCols = `m.id, m.sort_order, m.title, m.description, m.youtube_id, m.main_module_id, m.order_within_main,
	q.id, q.module_id, q.pass_score, q.time_limit_sec`

func (s *SQLStore) queryModulesWithQuiz(ctx context.Context, where, order string, args ...any) ([]ModuleWithQuiz, error) {
	q := `SELECT ` + moduleWithQuizCols + ` FROM modules m LEFT JOIN quizzes q ON q.module_id = m.id`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY ` + order
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ModuleWithQuiz
	for rows.Next() {
		var m ModuleWithQuiz
		var mainID, within sql.NullInt64
		var qid, qmod sql.NullString
		var pass, limit sql.NullInt64
		if err := rows.Scan(&m.ID, &m.SortOrder, &m.Title, &m.Description, &m.YouTubeID, &mainID, &within,
			&qid, &qmod, &pass, &limit); err != nil {
			return nil, err
		}
		if mainID.Valid {
			v := mainID.Int64
			m.MainModuleID = &v
		}
		if within.Valid {
			v := int(within.Int64)
			m.OrderWithinMain = &v
		}
		if qid.Valid {
			qz := &Quiz{ID: qid.String, ModuleID: qmod.String, PassScore: int(pass.Int64)}
			if limit.Valid {
				v := int(limit.Int64)
				qz.TimeLimitSeconds = &v
			}
			m.Quiz = qz
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListModules(ctx context.Context) ([]ModuleWithQuiz, error) {
	return s.queryModulesWithQuiz(ctx, "", "m.sort_order, m.id")
}

func (s *SQLStore) ListAssignedModules(ctx context.Context) ([]ModuleWithQuiz, error) {
	return s.queryModulesWithQuiz(ctx, "m.main_module_id IS NOT NULL", "m.main_module_id, m.order_within_main, m.id")
}

func (s *SQLStore) ListUnassignedModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,sort_order,title,description,youtube_id,main_module_id,order_within_main FROM modules WHERE main_module_id IS NULL ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Module
	for rows.Next() {
		m, err := scanModule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) AssignModules(ctx context.Context, mainModuleID int64, moduleIDs []string) error {
	var exist int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM main_modules WHERE id=$1`, mainModuleID).Scan(&exist)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMainModuleMissing
	}
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Unlink current members not in the new list, then renumber 1..n.
	if len(moduleIDs) == 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE modules SET main_module_id=NULL, order_within_main=NULL WHERE main_module_id=$1`, mainModuleID); err != nil {
			return err
		}
		return tx.Commit()
	}
	ph := make([]string, len(moduleIDs))
	args := make([]any, 0, len(moduleIDs)+1)
	args = append(args, mainModuleID)
	for i, id := range moduleIDs {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE modules SET main_module_id=NULL, order_within_main=NULL WHERE main_module_id=$1 AND id NOT IN (`+strings.Join(ph, ",")+`)`,
		args...); err != nil {
		return err
	}
	for i, id := range moduleIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE modules SET main_module_id=$1, order_within_main=$2 WHERE id=$3`, mainModuleID, i+1, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("assign %s: %w", id, ErrModuleNotFound)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ReorderModules(ctx context.Context, moduleIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for i, id := range moduleIDs {
		res, err := tx.ExecContext(ctx, `UPDATE modules SET sort_order=$1 WHERE id=$2`, i+1, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("reorder %s: %w", id, ErrModuleNotFound)
		}
	}
	return tx.Commit()
}

// ---- quizzes and questions ----

func (s *SQLStore) GetQuizByModule(ctx context.Context, moduleID string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,module_id,pass_score,time_limit_sec FROM quizzes WHERE module_id=$1`, moduleID)
	return scanQuiz(row)
}

func scanQuiz(row *sql.Row) (Quiz, error) {
	var q Quiz
	var limit sql.NullInt64
	if err := row.Scan(&q.ID, &q.ModuleID, &q.PassScore, &limit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	if limit.Valid {
		v := int(limit.Int64)
		q.TimeLimitSeconds = &v
	}
	return q, nil
}

func (s *SQLStore) EnsureQuiz(ctx context.Context, moduleID string) (Quiz, error) {
	q, err := s.GetQuizByModule(ctx, moduleID)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, ErrQuizNotFound) {
		return Quiz{}, err
	}
	if _, err := s.GetModule(ctx, moduleID); err != nil {
		return Quiz{}, err
	}
	limit := 300
	q = Quiz{ID: uuid.NewString(), ModuleID: moduleID, PassScore: DefaultPassScore, TimeLimitSeconds: &limit}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,module_id,pass_score,time_limit_sec) VALUES ($1,$2,$3,$4)`,
		q.ID, q.ModuleID, q.PassScore, limit)
	if err != nil {
		if isUniqueViolation(err) {
			// lost a create race; the other writer's quiz wins
			return s.GetQuizByModule(ctx, moduleID)
		}
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET pass_score=$1, time_limit_sec=$2 WHERE id=$3`,
		q.PassScore, nullInt(q.TimeLimitSeconds), q.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id,quiz_id,text,options_json,correct_index,active,question_type,correct_answer) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.QuizID, q.Text, string(oj), q.CorrectIndex, q.Active, q.QuestionType, q.CorrectAnswer)
	return err
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) error {
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET text=$1, options_json=$2, correct_index=$3, active=$4, question_type=$5, correct_answer=$6 WHERE id=$7`,
		q.Text, string(oj), q.CorrectIndex, q.Active, q.QuestionType, q.CorrectAnswer, q.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) listQuestions(ctx context.Context, quizID string, activeOnly bool) ([]Question, error) {
	q := `SELECT id,quiz_id,text,options_json,correct_index,active,question_type,correct_answer FROM questions WHERE quiz_id=$1`
	if activeOnly {
		q += ` AND active=` + s.boolLit(true)
	}
	q += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var qu Question
		var oj string
		if err := rows.Scan(&qu.ID, &qu.QuizID, &qu.Text, &oj, &qu.CorrectIndex, &qu.Active, &qu.QuestionType, &qu.CorrectAnswer); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &qu.Options); err != nil {
			return nil, err
		}
		out = append(out, qu)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListQuestions(ctx context.Context, quizID string) ([]Question, error) {
	return s.listQuestions(ctx, quizID, false)
}

func (s *SQLStore) ListActiveQuestions(ctx context.Context, quizID string) ([]Question, error) {
	return s.listQuestions(ctx, quizID, true)
}

func (s *SQLStore) boolLit(b bool) string {
	if s.driver == "postgres" {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	if b {
		return "1"
	}
	return "0"
}

// ---- attempts ----

func (s *SQLStore) ListAttempts(ctx context.Context, userID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,quiz_id,attempt_no,score,passed,answers_json,submitted_at FROM attempts WHERE user_id=$1 ORDER BY submitted_at, attempt_no`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var aj string
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &a.AttemptNo, &a.Score, &a.Passed, &aj, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
			a.Answers = nil
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateAttempt(ctx context.Context, userID, quizID string, score int, passed bool, answers []Answer) (Attempt, error) {
	a, err := s.insertAttempt(ctx, userID, quizID, score, passed, answers)
	if err != nil && isUniqueViolation(err) {
		// Two submissions raced on the same attempt number. Re-read once:
		// either there is still a slot and the retry takes the next number,
		// or the cap is reached and the loser is rejected.
		return s.insertAttempt(ctx, userID, quizID, score, passed, answers)
	}
	return a, err
}

func (s *SQLStore) insertAttempt(ctx context.Context, userID, quizID string, score int, passed bool, answers []Answer) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	var prior int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(attempt_no),0) FROM attempts WHERE user_id=$1 AND quiz_id=$2`, userID, quizID).Scan(&prior); err != nil {
		return Attempt{}, err
	}
	attemptNo := prior + 1
	if attemptNo > MaxAttempts {
		return Attempt{}, ErrNoAttemptsLeft
	}
	if answers == nil {
		answers = []Answer{}
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return Attempt{}, err
	}
	a := Attempt{
		ID:          uuid.NewString(),
		UserID:      userID,
		QuizID:      quizID,
		AttemptNo:   attemptNo,
		Score:       score,
		Passed:      passed,
		Answers:     answers,
		SubmittedAt: time.Now().Unix(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (id,user_id,quiz_id,attempt_no,score,passed,answers_json,submitted_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.UserID, a.QuizID, a.AttemptNo, a.Score, a.Passed, string(aj), a.SubmittedAt); err != nil {
		return Attempt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) DeleteAttempts(ctx context.Context, userID string, quizIDs []string) error {
	if len(quizIDs) == 0 {
		_, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE user_id=$1`, userID)
		return err
	}
	ph := make([]string, len(quizIDs))
	args := make([]any, 0, len(quizIDs)+1)
	args = append(args, userID)
	for i, id := range quizIDs {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM attempts WHERE user_id=$1 AND quiz_id IN (`+strings.Join(ph, ",")+`)`, args...)
	return err
}

// ---- certificates ----

func (s *SQLStore) UpsertCertificate(ctx context.Context, c Certificate) error {
	if c.IssuedAt == 0 {
		c.IssuedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO certificates (user_id,main_module_id,file_path,total_score,issued_at) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id,main_module_id) DO UPDATE SET file_path=EXCLUDED.file_path, total_score=EXCLUDED.total_score, issued_at=EXCLUDED.issued_at`,
		c.UserID, c.MainModuleID, c.FilePath, c.TotalScore, c.IssuedAt)
	return err
}

func (s *SQLStore) GetCertificate(ctx context.Context, userID string, mainModuleID int64) (Certificate, bool, error) {
	var c Certificate
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id,main_module_id,file_path,total_score,issued_at FROM certificates WHERE user_id=$1 AND main_module_id=$2`,
		userID, mainModuleID).Scan(&c.UserID, &c.MainModuleID, &c.FilePath, &c.TotalScore, &c.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Certificate{}, false, nil
	}
	if err != nil {
		return Certificate{}, false, err
	}
	return c, true, nil
}

func (s *SQLStore) DeleteCertificates(ctx context.Context, userID string) ([]Certificate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id,main_module_id,file_path,total_score,issued_at FROM certificates WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Certificate
	for rows.Next() {
		var c Certificate
		if err := rows.Scan(&c.UserID, &c.MainModuleID, &c.FilePath, &c.TotalScore, &c.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM certificates WHERE user_id=$1`, userID); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- import audit ----

func (s *SQLStore) RecordImport(ctx context.Context, rec ImportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO question_imports (id,uploaded_by,file_name,total,imported,failed,error_log,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.UploadedBy, rec.FileName, rec.Total, rec.Imported, rec.Failed, rec.ErrorLog, rec.CreatedAt)
	return err
}

// ---- helpers ----

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
