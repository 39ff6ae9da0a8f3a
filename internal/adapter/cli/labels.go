package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

func newLabelsCommand(deps Dependencies) *cobra.Command {
	var pf pathFlags
	var description string
	var colour uint32

	cmd := &cobra.Command{
		Use:   "labels [create NAME|delete NAME]",
		Short: "List, create, or delete labels on a repository",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := pf.toPath()

			if len(args) == 0 {
				labels, err := deps.Facade.GetLabels(ctx, path)
				if err != nil {
					return err
				}
				printLabels(cmd, labels)
				return nil
			}

			switch args[0] {
			case "create":
				if len(args) < 2 {
					return gclierr.Usagef("create needs a label name")
				}
				return deps.Facade.CreateLabel(ctx, path, gclidomain.Label{
					Name:        args[1],
					Description: description,
					Colour:      colour,
				})
			case "delete":
				if len(args) < 2 {
					return gclierr.Usagef("delete needs a label name")
				}
				return deps.Facade.DeleteLabel(ctx, path, args[1])
			default:
				return gclierr.Usagef("unknown labels action %q (want create|delete)", args[0])
			}
		},
	}
	addPathFlags(cmd, &pf, deps.DefaultOwner, deps.DefaultRepo)
	cmd.Flags().StringVar(&description, "description", "", "Label description (create only)")
	cmd.Flags().Uint32Var(&colour, "colour", 0, "Label colour as a 24-bit RGB integer (create only)")
	return cmd
}

func printLabels(cmd *cobra.Command, labels []gclidomain.Label) {
	for _, l := range labels {
		fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %06x %s\n", l.ID, l.Colour, l.Name)
	}
}
