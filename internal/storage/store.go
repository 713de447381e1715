/**
* Name: 			store.go
* Description: 		리뷰 테이블(스프레드시트 워크시트) 저장소 인터페이스
* Workflow: 		테이블 조회, 없으면 헤더와 함께 생성, 행 추가
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableExists   = errors.New("table already exists")
)

// Handle identifies an opened table.
type Handle struct {
	Name string
	ID   int64
}

// Store is the spreadsheet collaborator. Tables are append-only.
type Store interface {
	OpenTable(ctx context.Context, name string) (Handle, error)
	// CreateTable creates the table and writes header as its first row. It
	// fails if the table already exists.
	CreateTable(ctx context.Context, name string, header []string) (Handle, error)
	// HeaderRow returns the first row of the table, or nil if it has none.
	HeaderRow(ctx context.Context, h Handle) ([]string, error)
	AppendRow(ctx context.Context, h Handle, row []string) error
	// ReadTable returns every row, header first.
	ReadTable(ctx context.Context, name string) ([][]string, error)
}

// Appender runs create-or-append against a Store. Appends are serialized so
// two first writes to a new table cannot both create it.
type Appender struct {
	store Store
	log   *zap.SugaredLogger
	mu    sync.Mutex
}

func NewAppender(store Store, log *zap.SugaredLogger) *Appender {
	return &Appender{store: store, log: log}
}

// AppendToTable appends row to the named table, creating it with header first
// if it does not exist. A table whose first row is empty gets the header
// written before the row; a table with a different first row is left as is.
func (a *Appender) AppendToTable(ctx context.Context, name string, header, row []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, err := a.store.OpenTable(ctx, name)
	switch {
	case errors.Is(err, ErrTableNotFound):
		a.log.Infof("AppendToTable(): table %s not found, creating it", name)
		h, err = a.store.CreateTable(ctx, name, header)
		if err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	case err != nil:
		return fmt.Errorf("open table %s: %w", name, err)
	default:
		existing, err := a.store.HeaderRow(ctx, h)
		if err != nil {
			return fmt.Errorf("read header of %s: %w", name, err)
		}
		if len(existing) == 0 {
			a.log.Warnf("AppendToTable(): table %s has no header row, writing it", name)
			if err := a.store.AppendRow(ctx, h, header); err != nil {
				return fmt.Errorf("write header of %s: %w", name, err)
			}
		} else if !slices.Equal(existing, header) {
			a.log.Warnf("AppendToTable(): table %s has unexpected header %v, appending anyway", name, existing)
		}
	}

	if err := a.store.AppendRow(ctx, h, row); err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return nil
}
