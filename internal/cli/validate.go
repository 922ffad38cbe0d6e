package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"quartz-skins/internal/app"
	"quartz-skins/internal/types"
)

type validateOptions struct {
	Skin     string
	Scene    string
	Contexts []string
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a skin and dry-run its modules against a scene",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Skin, "skin", "", "Skin directory or skin.xml path")
	cmd.Flags().StringVar(&opts.Scene, "scene", "", "Scene snapshot (YAML) to dry-run against")
	cmd.Flags().StringSliceVar(&opts.Contexts, "check", nil, "Context classes to dry-run (default: all with modules)")
	return cmd
}

func runValidate(ctx context.Context, out io.Writer, opts validateOptions) error {
	if strings.TrimSpace(opts.Skin) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--skin is required")
	}
	contexts, err := parseContexts(opts.Contexts)
	if err != nil {
		return err
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	if opts.Scene != "" {
		if err := service.OpenScene(ctx, opts.Scene); err != nil {
			return err
		}
	}
	result, err := service.Validate(ctx, app.ValidateRequest{SkinPath: opts.Skin, Contexts: contexts})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "validated: %s (by %s)\n", result.Name, result.Author)
	fmt.Fprintf(out, "colors: %d\n", result.Colors)
	fmt.Fprintf(out, "atlases: %s\n", strings.Join(result.Atlases, ", "))
	for _, class := range types.ContextClasses {
		if count, ok := result.Modules[class]; ok {
			fmt.Fprintf(out, "modules[%s]: %d\n", class, count)
		}
	}
	for _, check := range result.Contexts {
		if check.Err != nil {
			fmt.Fprintf(out, "- %s: FAILED %v\n", check.Context, check.Err)
			continue
		}
		fmt.Fprintf(out, "- %s: ok (%d writes, %d restored)\n", check.Context, check.Writes, check.Restored)
	}
	if !result.OK() {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("skin failed to apply to the scene")
	}
	return nil
}
