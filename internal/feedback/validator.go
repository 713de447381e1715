package feedback

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"CanteenFeedback/internal/models"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// MinVisitDate is the earliest visit date the form accepts.
var MinVisitDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation of a rejected submission.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "invalid feedback: " + strings.Join(msgs, "; ")
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Validate checks every rule and returns all violations in field order.
// today is the server's current local date.
func Validate(rec models.FeedbackRecord, today time.Time) []Violation {
	var violations []Violation
	add := func(field, msg string) {
		violations = append(violations, Violation{Field: field, Message: msg})
	}

	if strings.TrimSpace(rec.Name) == "" {
		add("name", "Full Name is required.")
	}
	if !IsValidPhone(rec.Phone) {
		add("phone", "Phone must be exactly 10 digits.")
	}
	if strings.TrimSpace(rec.Food) == "" {
		add("food", "Please tell us what you ordered.")
	}
	if msg := checkVisitDate(rec.VisitDate, today); msg != "" {
		add("visit_date", msg)
	}
	if strings.TrimSpace(rec.Review) == "" {
		add("review", "We'd love to hear your thoughts!")
	}
	return violations
}

// Dates compare as YYYY-MM-DD strings, each in its own location.
func checkVisitDate(visit, today time.Time) string {
	if visit.IsZero() {
		return "Visit date is required."
	}
	day := visit.Format(models.DateLayout)
	if day > today.Format(models.DateLayout) {
		return "Visit date can't be in the future."
	}
	if floor := MinVisitDate.Format(models.DateLayout); day < floor {
		return fmt.Sprintf("Visit date can't be before %s.", floor)
	}
	return ""
}
