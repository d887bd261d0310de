package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Rotor/internal/repo"
)

// Stores — репозитории CLI поверх одного pgx-пула.
type Stores struct {
	Schedules  *repo.ScheduleRepo
	Selections *repo.SelectionRepo
	Panels     *repo.PanelRepo
	Bindings   *repo.BindingRepo

	pool *pgxpool.Pool
}

// OpenStores открывает пул и собирает репозитории.
func OpenStores(ctx context.Context, dbURL string) (*Stores, error) {
	pool, err := repo.NewPool(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Stores{
		Schedules:  repo.NewScheduleRepo(pool),
		Selections: repo.NewSelectionRepo(pool),
		Panels:     repo.NewPanelRepo(pool),
		Bindings:   repo.NewBindingRepo(pool),
		pool:       pool,
	}, nil
}

// Close закрывает пул.
func (s *Stores) Close() {
	s.pool.Close()
}
