/**
* Name: 			submit.go
* Description: 		피드백 제출 처리
* Workflow: 		검증 -> 감성 분류 -> 테이블 선택 -> 행 추가 -> 확인 메시지
 */

package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"CanteenFeedback/internal/models"
)

// GuestName is shown when the submitter left the name empty.
const GuestName = "guest"

type Classifier interface {
	Classify(ctx context.Context, review string) (models.SentimentLabel, error)
}

type TableAppender interface {
	AppendToTable(ctx context.Context, name string, header, row []string) error
}

// Notifier is told about every stored row. It must not block.
type Notifier interface {
	RowStored(table string, row models.StoredRow)
}

type Confirmation struct {
	SubmissionID string                `json:"submission_id"`
	FirstName    string                `json:"first_name"`
	Sentiment    models.SentimentLabel `json:"sentiment"`
	Table        string                `json:"table"`
	Row          models.StoredRow      `json:"row"`
}

// Service runs the submission path.
type Service struct {
	classifier Classifier
	appender   TableAppender
	notifier   Notifier
	log        *zap.SugaredLogger
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for the future-date check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(classifier Classifier, appender TableAppender, log *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		appender:   appender,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the server's local date used for validation.
func (s *Service) Today() time.Time {
	return s.now()
}

// Submit validates rec, classifies its review once and appends it to exactly
// one table. A *ValidationError means nothing was classified or stored.
func (s *Service) Submit(ctx context.Context, rec models.FeedbackRecord) (*Confirmation, error) {
	if violations := Validate(rec, s.now()); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	submissionID := uuid.New().String()

	label, err := s.classifier.Classify(ctx, rec.Review)
	if err != nil {
		s.log.Errorf("Submit(): %s: classification failed: %v", submissionID, err)
		return nil, fmt.Errorf("classify review: %w", err)
	}

	table, row := Route(rec, label)
	if err := s.appender.AppendToTable(ctx, table.Name, models.Header, row.Cells()); err != nil {
		s.log.Errorf("Submit(): %s: storing row in %s failed: %v", submissionID, table.Name, err)
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	s.log.Infof("Submit(): %s: stored %s feedback in %s", submissionID, label, table.Name)

	if s.notifier != nil {
		s.notifier.RowStored(table.Name, row)
	}

	return &Confirmation{
		SubmissionID: submissionID,
		FirstName:    FirstName(rec.Name),
		Sentiment:    label,
		Table:        table.Name,
		Row:          row,
	}, nil
}

// Route picks the table for label and builds the row to store.
func Route(rec models.FeedbackRecord, label models.SentimentLabel) (Table, models.StoredRow) {
	return TableFor(label), models.StoredRow{
		Name:   rec.Name,
		Phone:  rec.Phone,
		Food:   rec.Food,
		Date:   rec.VisitDate.Format(models.DateLayout),
		Review: rec.Review,
	}
}

// FirstName is the first whitespace-delimited word of name, or GuestName.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return GuestName
	}
	return fields[0]
}
