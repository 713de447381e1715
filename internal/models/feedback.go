package models

import "time"

// DateLayout is the persisted form of a visit date.
const DateLayout = "2006-01-02"

// 피드백 폼 한 건
type FeedbackRecord struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Food      string    `json:"food"`
	VisitDate time.Time `json:"visit_date"`
	Review    string    `json:"review"`
}

type SentimentLabel string

const (
	Positive SentimentLabel = "Positive"
	Negative SentimentLabel = "Negative"
)

// StoredRow is the persisted projection of a FeedbackRecord.
type StoredRow struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Food   string `json:"food"`
	Date   string `json:"date"`
	Review string `json:"review"`
}

// Cells returns the row in header order.
func (r StoredRow) Cells() []string {
	return []string{r.Name, r.Phone, r.Food, r.Date, r.Review}
}

// Header is written as the first row of every review table.
var Header = []string{"Name", "Phone", "Food", "Date", "Review"}
