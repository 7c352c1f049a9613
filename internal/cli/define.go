package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// propertyView is the JSON form of a property.
type propertyView struct {
	Name      string         `json:"name"`
	Kind      types.KindName `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
}

func viewProperty(p *types.Property) propertyView {
	return propertyView{Name: p.Name, Kind: p.Kind, CreatedAt: p.CreatedAt.UTC()}
}

func (a *app) newDefineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "define <property> <kind>",
		Short: "Define a property and the kind of its values",
		Long: "Define a property. Defining an existing property with the same kind\n" +
			"is a no-op; a different kind is an error. See 'strata kinds'.",
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, release, err := a.attach()
			if err != nil {
				return err
			}
			defer release()

			p, err := b.DefineProperty(cmd.Context(), args[0], types.KindName(args[1]))
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, viewProperty(p))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "defined %s as %s\n", p.Name, p.Kind)
			return nil
		},
	}
}

func (a *app) newPropertiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "properties",
		Short: "List defined properties",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, release, err := a.attach()
			if err != nil {
				return err
			}
			defer release()

			props, err := b.Properties(cmd.Context())
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				views := make([]propertyView, len(props))
				for i, p := range props {
					views[i] = viewProperty(p)
				}
				return printJSON(cmd, views)
			}
			w := cmd.OutOrStdout()
			for _, p := range props {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Kind, p.CreatedAt.UTC().Format(time.RFC3339Nano))
			}
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
