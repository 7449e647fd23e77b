// Package csvimport loads quiz questions from admin-uploaded CSV files.
//
// Expected columns: question_type, question_text, option_a..option_d,
// correct_answer and sub_module_id (module_id accepted as an alias).
// Supported types: MCQ_4, MCQ_2 and TRUE_FALSE. Rows are validated
// independently; a bad row is reported and skipped, the rest still import.
package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/traingate/traingate/internal/training"
)

type Result struct {
	Total         int      `json:"total"`
	Imported      int      `json:"imported"`
	Failed        int      `json:"failed"`
	Errors        []string `json:"errors"`
	HasMoreErrors bool     `json:"has_more_errors"`
	TotalErrors   int      `json:"total_errors"`
	CreatedIDs    []string `json:"created_ids"`
}

const maxReportedErrors = 10

type row map[string]string

func (r row) get(k string) string { return strings.TrimSpace(r[k]) }

func Import(ctx context.Context, store training.Store, uploadedBy, fileName string, src io.Reader) (Result, error) {
	rd := csv.NewReader(src)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var res Result
	var allErrors []string
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read csv: %w", err)
		}
		res.Total++
		r := row{}
		for i, h := range header {
			if i < len(record) {
				r[h] = record[i]
			}
		}
		id, rowErr := importRow(ctx, store, res.Total, r)
		if rowErr != nil {
			res.Failed++
			allErrors = append(allErrors, rowErr.Error())
			continue
		}
		res.Imported++
		res.CreatedIDs = append(res.CreatedIDs, id)
	}

	res.TotalErrors = len(allErrors)
	if len(allErrors) > maxReportedErrors {
		res.Errors = allErrors[:maxReportedErrors]
		res.HasMoreErrors = true
	} else {
		res.Errors = allErrors
	}

	if err := store.RecordImport(ctx, training.ImportRecord{
		UploadedBy: uploadedBy,
		FileName:   fileName,
		Total:      res.Total,
		Imported:   res.Imported,
		Failed:     res.Failed,
		ErrorLog:   truncate(strings.Join(allErrors, "\n"), 8000),
	}); err != nil {
		return Result{}, fmt.Errorf("record import summary: %w", err)
	}
	return res, nil
}

func importRow(ctx context.Context, store training.Store, n int, r row) (string, error) {
	qtype := strings.ToUpper(r.get("question_type"))
	if qtype == "" {
		return "", fmt.Errorf("row %d: question_type is required", n)
	}
	text := r.get("question_text")
	if text == "" {
		return "", fmt.Errorf("row %d: question_text is required", n)
	}
	moduleID := r.get("module_id")
	if moduleID == "" {
		moduleID = r.get("sub_module_id")
	}
	if moduleID == "" {
		return "", fmt.Errorf("row %d: module_id/sub_module_id is required", n)
	}
	if _, err := store.GetModule(ctx, moduleID); err != nil {
		return "", fmt.Errorf("row %d: module %s not found", n, moduleID)
	}
	quiz, err := store.EnsureQuiz(ctx, moduleID)
	if err != nil {
		return "", fmt.Errorf("row %d: %v", n, err)
	}

	q := training.Question{ID: uuid.NewString(), QuizID: quiz.ID, Text: text, Active: true}
	ans := strings.ToUpper(r.get("correct_answer"))

	switch qtype {
	case "MCQ_4":
		opts := []string{r.get("option_a"), r.get("option_b"), r.get("option_c"), r.get("option_d")}
		for i, o := range opts {
			if o == "" {
				return "", fmt.Errorf("row %d: MCQ_4 requires option_%c", n, 'a'+i)
			}
		}
		idx := strings.Index("ABCD", ans)
		if len(ans) != 1 || idx < 0 {
			return "", fmt.Errorf("row %d: correct_answer must be A, B, C, or D (received: %s)", n, orEmpty(ans))
		}
		q.Options, q.CorrectIndex, q.QuestionType, q.CorrectAnswer = opts, idx, "MCQ_4", ans
	case "MCQ_2":
		opts := []string{r.get("option_a"), r.get("option_b")}
		for i, o := range opts {
			if o == "" {
				return "", fmt.Errorf("row %d: MCQ_2 requires option_%c", n, 'a'+i)
			}
		}
		idx := strings.Index("AB", ans)
		if len(ans) != 1 || idx < 0 {
			return "", fmt.Errorf("row %d: correct_answer for MCQ_2 must be A or B (received: %s)", n, orEmpty(ans))
		}
		q.Options, q.CorrectIndex, q.QuestionType, q.CorrectAnswer = opts, idx, "MCQ_2", ans
	case "TRUE_FALSE", "TRUEFALSE", "TRUE/FALSE":
		if ans != "TRUE" && ans != "FALSE" {
			return "", fmt.Errorf("row %d: correct_answer for TRUE_FALSE must be TRUE or FALSE (received: %s)", n, orEmpty(ans))
		}
		q.Options = []string{"TRUE", "FALSE"}
		q.CorrectIndex = 0
		if ans == "FALSE" {
			q.CorrectIndex = 1
		}
		q.QuestionType, q.CorrectAnswer = "TRUE_FALSE", ans
	default:
		return "", fmt.Errorf("row %d: unsupported question_type '%s'. Must be MCQ_4, MCQ_2, or TRUE_FALSE", n, r.get("question_type"))
	}

	if err := store.CreateQuestion(ctx, q); err != nil {
		return "", fmt.Errorf("row %d: %v", n, err)
	}
	return q.ID, nil
}

func orEmpty(s string) string {
	if s == "" {
		return "empty"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
