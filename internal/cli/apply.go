package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
)

type applyOptions struct {
	Skin     string
	Scene    string
	Output   string
	Rollback bool
}

func newApplyCommand() *cobra.Command {
	opts := applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a skin to a scene snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Skin = resolveString(cmd, opts.Skin, "selected_skin", "skin")
			return runApply(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Skin, "skin", "", "Skin directory or skin.xml path")
	cmd.Flags().StringVar(&opts.Scene, "scene", "", "Scene snapshot (YAML)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the resulting scene to this file")
	cmd.Flags().BoolVar(&opts.Rollback, "rollback", false, "Roll the skin back before writing the scene")
	return cmd
}

func runApply(ctx context.Context, out io.Writer, opts applyOptions) error {
	if strings.TrimSpace(opts.Skin) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--skin is required")
	}
	if strings.TrimSpace(opts.Scene) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--scene is required")
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	if err := service.OpenScene(ctx, opts.Scene); err != nil {
		return err
	}
	defer service.Close(ctx)
	result, err := service.Select(ctx, opts.Skin)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "applied: %s to %s (%d writes)\n", result.Name, result.Context, result.Writes)
	fmt.Fprintf(out, "render area: %s\n", service.Viewport().Area)

	if opts.Rollback {
		service.SelectVanilla(ctx)
		fmt.Fprintln(out, "rolled back")
	}
	if opts.Output != "" {
		if err := service.DumpScene(opts.Output); err != nil {
			return err
		}
		fmt.Fprintf(out, "scene written: %s\n", opts.Output)
	}
	return nil
}
