package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"matchvault/internal/config"
	"matchvault/internal/jobqueue"
	"matchvault/internal/matchstore"
)

// commandContext lazily loads configuration and opens gateways so that
// commands which never touch them (config init, help) stay cheap.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the queue database for one command invocation.
func (c *commandContext) withStore(fn func(*jobqueue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := jobqueue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// withMatches dials the match document store for one command invocation.
func (c *commandContext) withMatches(ctx context.Context, fn func(*matchstore.MongoStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	matches, err := matchstore.Connect(dialCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer matches.Close(context.Background()) //nolint:errcheck
	return fn(matches)
}
