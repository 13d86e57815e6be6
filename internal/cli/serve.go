package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var noSchedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and the daily scrape schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer teardown(c)

			if !noSchedule {
				if err := c.Scheduler.Start(ctx); err != nil {
					return err
				}
				defer c.Scheduler.Stop()
			}

			server := c.RESTServer()
			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				c.Logger.Info("shutting down courtside")
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				c.Logger.Warn("REST server shutdown error", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "Serve webhooks only; do not run the scrape cron")
	return cmd
}
