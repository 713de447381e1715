package feedback

import "CanteenFeedback/internal/models"

const (
	PositiveTable = "positive_reviews"
	NegativeTable = "negative_reviews"
)

type Table struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

var tables = map[models.SentimentLabel]Table{
	models.Positive: {Name: PositiveTable, Title: "Positive Reviews"},
	models.Negative: {Name: NegativeTable, Title: "Negative Reviews"},
}

// TableFor returns the table a label routes to. Anything but Positive goes
// to the negative table.
func TableFor(label models.SentimentLabel) Table {
	if label == models.Positive {
		return tables[models.Positive]
	}
	return tables[models.Negative]
}

// Tables lists the review tables in display order.
func Tables() []Table {
	return []Table{tables[models.Positive], tables[models.Negative]}
}
