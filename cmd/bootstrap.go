package cmd

import (
	"context"
	"fmt"

	"github.com/aichat/aichat/internal/config"
	"github.com/aichat/aichat/internal/engine"
	"github.com/aichat/aichat/internal/llm"
	"github.com/aichat/aichat/internal/store"
)

// openEngine wires the store, registry and engine together and loads the
// current conversation. The caller must Close the returned store.
func openEngine(ctx context.Context) (*engine.Engine, store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	eng := engine.New(st, llm.NewRegistry())
	eng.KeyFallback = config.APIKeyFromEnv

	if err := eng.LoadCurrent(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return eng, st, nil
}
