package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/codec"
	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

const absentMarker = "<absent>"

// versionView is the JSON form of a version. Value is null when absent.
type versionView struct {
	ID        int64          `json:"id"`
	SubjectID uuid.UUID      `json:"subject_id"`
	AddedAt   time.Time      `json:"added_at"`
	Kind      types.KindName `json:"kind"`
	Value     *string        `json:"value"`
}

func viewVersion(e store.Entry) versionView {
	return versionView{ID: e.ID, SubjectID: e.SubjectID, AddedAt: e.AddedAt.UTC(), Kind: e.Kind, Value: e.Value}
}

func writeVersion(w io.Writer, e store.Entry) {
	value := absentMarker
	if e.Value != nil {
		value = *e.Value
	}
	fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.AddedAt.UTC().Format(time.RFC3339Nano), value)
}

func (a *app) printVersion(cmd *cobra.Command, e store.Entry) error {
	if a.flags.jsonMode {
		return printJSON(cmd, viewVersion(e))
	}
	writeVersion(cmd.OutOrStdout(), e)
	return nil
}

func (a *app) newSetCmd() *cobra.Command {
	var absent bool
	cmd := &cobra.Command{
		Use:   "set <property> <subject> [value]",
		Short: "Record a new version of a subject's property",
		Long: "Record a new version. The value is parsed according to the property's\n" +
			"kind: RFC 3339 for datetimes, base64 for blobs. Use --absent instead of\n" +
			"a value to record an absent value for nullable, text and blob kinds.",
		Args: checkArgs(cobra.RangeArgs(2, 3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := parseSubject(args[1])
			if err != nil {
				return err
			}
			switch {
			case absent && len(args) == 3:
				return fmt.Errorf("%w: --absent does not take a value", errUsage)
			case !absent && len(args) == 2:
				return fmt.Errorf("%w: a value or --absent is required", errUsage)
			}

			return a.withColumn(cmd.Context(), args[0], func(col store.Column) error {
				value, err := parseValue(col.Property().Kind, args[2:], absent)
				if err != nil {
					return err
				}
				e, err := col.Create(cmd.Context(), subject, value)
				if err != nil {
					return err
				}
				return a.printVersion(cmd, e)
			})
		},
	}
	cmd.Flags().BoolVar(&absent, "absent", false, "record an absent value")
	return cmd
}

// parseValue converts the command-line value into the Go value of kind.
func parseValue(kind types.KindName, args []string, absent bool) (any, error) {
	c, err := codec.For(kind)
	if err != nil {
		return nil, err
	}
	if !absent {
		return c.Parse(args[0])
	}
	v, ok := c.AbsentValue()
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be absent", types.ErrInvalidValue, kind)
	}
	return v, nil
}

func (a *app) newHistoryCmd() *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "history <property> <subject>",
		Short: "List every version of a subject's property",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := parseSubject(args[1])
			if err != nil {
				return err
			}
			order := types.OrderAddedAsc
			if desc {
				order = types.OrderAddedDesc
			}

			return a.withColumn(cmd.Context(), args[0], func(col store.Column) error {
				entries, err := col.History(cmd.Context(), subject, order)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					views := make([]versionView, len(entries))
					for i, e := range entries {
						views[i] = viewVersion(e)
					}
					return printJSON(cmd, views)
				}
				for _, e := range entries {
					writeVersion(cmd.OutOrStdout(), e)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&desc, "desc", false, "newest version first")
	return cmd
}

func (a *app) newAsOfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "as-of <property> <subject> <time>",
		Short: "Show the version in effect at an RFC 3339 time",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := parseSubject(args[1])
			if err != nil {
				return err
			}
			at, err := time.Parse(time.RFC3339Nano, args[2])
			if err != nil {
				return fmt.Errorf("%w: time %q is not RFC 3339", errUsage, args[2])
			}

			return a.withColumn(cmd.Context(), args[0], func(col store.Column) error {
				e, err := col.AsOf(cmd.Context(), subject, at)
				if err != nil {
					return err
				}
				return a.printVersion(cmd, e)
			})
		},
	}
}
