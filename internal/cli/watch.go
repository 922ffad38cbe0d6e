package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	Skin     string
	Scene    string
	Interval time.Duration
	Duration time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Apply a skin and re-apply it whenever its files change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Skin = resolveString(cmd, opts.Skin, "selected_skin", "skin")
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Skin, "skin", "", "Skin directory or skin.xml path")
	cmd.Flags().StringVar(&opts.Scene, "scene", "", "Scene snapshot (YAML)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "How often to poll for changes")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

func runWatch(ctx context.Context, out io.Writer, opts watchOptions) error {
	if strings.TrimSpace(opts.Skin) == "" || strings.TrimSpace(opts.Scene) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--skin and --scene are required")
	}
	if opts.Interval <= 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--interval must be positive")
	}
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	service, err := newAppService()
	if err != nil {
		return err
	}
	service.Config.AutoReload = true
	if err := service.OpenScene(ctx, opts.Scene); err != nil {
		return err
	}
	defer service.Close(context.WithoutCancel(ctx))

	// A skin that fails to apply stays selected so that fixing it on disk
	// triggers a reload.
	result, err := service.Select(ctx, opts.Skin)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("skin did not apply, waiting for changes")
	} else {
		fmt.Fprintf(out, "applied: %s to %s (%d writes)\n", result.Name, result.Context, result.Writes)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "stopped watching")
			return nil
		case <-ticker.C:
			tick := service.Tick(ctx)
			if tick.Reloaded {
				active := service.Active()
				fmt.Fprintf(out, "reloaded: %s (valid=%t)\n", active.Name(), active.Valid())
			}
		}
	}
}
