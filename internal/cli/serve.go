package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cgmap/pkg/api"
	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/session"
)

// sessionSweepInterval is how often expired view sessions are dropped.
const sessionSweepInterval = time.Minute

// serveCommand creates the serve command running the HTTP map server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		sessionTTL time.Duration
		maxBytes   int64
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve maps and zoomable view sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.Server.SessionTTL.Duration = sessionTTL
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			store := session.NewStore(
				session.WithTTL(cfg.Server.SessionTTL.Duration),
				session.WithCache(runner.Cache),
				session.WithKeyer(cache.NewScopedKeyer(runner.Keyer, "sessions:")),
				session.WithRenderConfig(cfg.Render),
				session.WithLogger(c.Logger),
			)
			go store.Run(ctx, sessionSweepInterval)

			srv := api.New(store, runner,
				api.WithLogger(c.Logger),
				api.WithMaxSceneBytes(maxBytes),
				api.WithDefaults(cfg.PipelineOptions()),
			)
			printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
			printDetail("Sessions expire after %s idle", cfg.Server.SessionTTL.Duration)

			err = srv.ListenAndServe(ctx, cfg.Server.Addr)
			if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "idle time before a view session expires")
	cmd.Flags().Int64Var(&maxBytes, "max-scene-bytes", api.DefaultMaxSceneBytes, "largest accepted scene document")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
