package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/codec"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// kindView describes one catalog kind.
type kindView struct {
	Kind    types.KindName `json:"kind"`
	Storage string         `json:"storage"`
	Absence string         `json:"absence"`
}

// absence describes how a kind treats an absent value.
func absence(k types.KindName) string {
	switch {
	case k.Required():
		return "rejected"
	case k.Optional():
		return "allowed"
	}
	return "none"
}

func (a *app) newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the value kinds a property can be defined with",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var views []kindView
			for _, k := range types.Catalog() {
				c, err := codec.For(k)
				if err != nil {
					return err
				}
				views = append(views, kindView{Kind: k, Storage: c.Class().String(), Absence: absence(k)})
			}

			if a.flags.jsonMode {
				return printJSON(cmd, views)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "KIND\tSTORAGE\tABSENCE")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%s\t%s\n", v.Kind, v.Storage, v.Absence)
			}
			return nil
		},
	}
}
