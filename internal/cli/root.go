// Package cli implements the strata command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app is the state shared by one command tree.
type app struct {
	flags rootFlags
	clock func() time.Time
}

// Option configures the command tree built by NewRootCmd.
type Option func(*app)

// WithClock replaces the clock backends use to stamp new versions.
func WithClock(clock func() time.Time) Option {
	return func(a *app) { a.clock = clock }
}

// NewRootCmd creates the top-level "strata" command with global flags
// and all subcommands registered.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "strata",
		Short: "Versioned property storage",
		Long: "Strata records every value a subject's properties ever held.\n" +
			"Each write appends an immutable version; reads return the full history.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: .strata)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .strata-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "warn", "backend log level (debug, info, warn, error, disabled)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newKindsCmd())
	root.AddCommand(a.newDefineCmd())
	root.AddCommand(a.newPropertiesCmd())
	root.AddCommand(a.newSetCmd())
	root.AddCommand(a.newHistoryCmd())
	root.AddCommand(a.newAsOfCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "strata:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// userErrors are caused by arguments or data; anything else is a system error.
var userErrors = []error{
	types.ErrInvalidName,
	types.ErrInvalidKind,
	types.ErrPropertyNotFound,
	types.ErrKindMismatch,
	types.ErrInvalidSubject,
	types.ErrInvalidValue,
	types.ErrInvalidOrder,
	types.ErrNoVersion,
	types.ErrRequiredValueMissing,
	errUsage,
}

var errUsage = errors.New("usage")

func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
