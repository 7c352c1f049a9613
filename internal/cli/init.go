package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize strata storage",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"attach the configured backend once so its schema exists. Without\n" +
			"--global the configuration lives in .strata in the current directory.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, global)
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "use the per-user configuration and data directories")
	return cmd
}

// initDirs picks where init writes config.yaml and the data_dir it records
// there. An empty data_dir leaves the choice to ResolveDataDir.
func (a *app) initDirs(global bool) (configDir, dataDir string, err error) {
	if a.flags.dataDir != "" {
		if dataDir, err = filepath.Abs(a.flags.dataDir); err != nil {
			return "", "", err
		}
	}
	if a.flags.configDir != "" || os.Getenv(paths.EnvConfigDir) != "" {
		configDir, err = paths.ResolveConfigDir(a.flags.configDir)
		return configDir, dataDir, err
	}
	if !global {
		configDir, err = filepath.Abs(paths.DefaultConfigDirName)
		return configDir, dataDir, err
	}
	if configDir, err = paths.DefaultConfigDir(); err != nil {
		return "", "", err
	}
	if dataDir == "" {
		dataDir, err = paths.DefaultDataDir()
	}
	return configDir, dataDir, err
}

func (a *app) runInit(cmd *cobra.Command, global bool) error {
	configDir, dataDir, err := a.initDirs(global)
	if err != nil {
		return err
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), dataDir); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Later commands find this config through the normal resolution, so
	// attach through it too.
	a.flags.configDir = configDir
	_, release, err := a.attach()
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	release()

	fmt.Fprintln(cmd.OutOrStdout(), "Strata initialized successfully")
	return nil
}

// exactArgs is cobra.ExactArgs with errors classified as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return checkArgs(cobra.ExactArgs(n))
}

func checkArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}
