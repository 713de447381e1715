package feedback

import (
	"context"
	"errors"
	"fmt"

	"CanteenFeedback/internal/storage"
)

type TableReader interface {
	ReadTable(ctx context.Context, name string) ([][]string, error)
}

// TableView is one tab of the dashboard. Rows include the header row.
type TableView struct {
	Table
	Rows [][]string `json:"rows"`
}

// Dashboard loads both review tables as stored, with no filtering or sorting.
// A table that has not been created yet shows as an empty tab.
func Dashboard(ctx context.Context, reader TableReader) ([]TableView, error) {
	var views []TableView
	for _, t := range Tables() {
		rows, err := reader.ReadTable(ctx, t.Name)
		if errors.Is(err, storage.ErrTableNotFound) {
			rows = [][]string{}
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.Name, err)
		}
		views = append(views, TableView{Table: t, Rows: rows})
	}
	return views, nil
}
