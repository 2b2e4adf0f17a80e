package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/vita/internal/scheduling/infrastructure/persistence"
)

// openPostgres connects a pgx pool and wraps it in a plan repository.
func openPostgres(ctx context.Context, url string) (*persistence.PostgresPlanRepository, func(), error) {
	if url == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return persistence.NewPostgresPlanRepository(pool), pool.Close, nil
}
