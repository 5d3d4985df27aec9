package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/eleven-am/inventory/internal/database"
	"github.com/eleven-am/inventory/internal/inventory"
	"github.com/eleven-am/inventory/internal/logger"
	"github.com/eleven-am/inventory/internal/orm"
)

// openStore connects with the active configuration and makes sure the
// schema exists. The returned func closes the connection.
func openStore(ctx context.Context) (*inventory.Store, func(), error) {
	cfg := appConfig
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := database.NewDBConfig(cfg.Database.Driver, cfg.Database.URL).Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	store := inventory.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, storageError(err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.CLI().Warn("failed to close database", "error", err)
		}
	}
	return store, closeFn, nil
}

// storageError hides driver detail from the user except for the
// not-found case, which is actionable.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, orm.ErrNotFound) {
		return err
	}

	logger.CLI().Error("storage failure", "error", err)
	return fmt.Errorf("internal storage error: %w", err)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
