package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List skins installed in the mod directories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runList(ctx context.Context, out io.Writer) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	skins, err := service.ListSkins(ctx)
	if err != nil {
		return err
	}
	if len(skins) == 0 {
		fmt.Fprintln(out, "no skins found")
		return nil
	}
	for _, skin := range skins {
		legacy := ""
		if skin.Legacy {
			legacy = " [legacy]"
		}
		fmt.Fprintf(out, "%s (by %s)%s\n  %s\n", skin.Name, skin.Author, legacy, skin.Path)
	}
	return nil
}
