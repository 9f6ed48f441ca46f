package main

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"btrfsusage/pkg/config"
	"btrfsusage/pkg/log"
	"btrfsusage/pkg/manager"
	"btrfsusage/pkg/report"
	"btrfsusage/pkg/store"
	"btrfsusage/pkg/store/btrfs"
)

//go:embed VERSION
var Version string

var (
	configFile string
	rawBytes   bool
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "btrfs-usage",
		Short: "Show space usage of btrfs filesystems",
		Long: `Reports how the space of mounted btrfs filesystems is allocated and used,
per allocation class, redundancy profile and device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&rawBytes, "bytes", "b", false, "print sizes in bytes")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		dfCmd(),
		diskUsageCmd(),
		deviceUsageCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "df <path> [<path>...]",
		Short: "Show the space summary of filesystems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, report.DiskFree)
		},
	}
}

func diskUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disk-usage <path> [<path>...]",
		Short: "Show space usage per allocation class and device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, report.DiskUsage)
		},
	}

	cmd.Flags().BoolP("tabular", "t", false, "print the usage as a table")
	return cmd
}

func deviceUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device-usage <path> [<path>...]",
		Short: "Show space usage of every device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, report.DeviceUsage)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "btrfs-usage %s\n", strings.TrimSpace(Version))
		},
	}
}

// reportFunc builds one kind of report.
type reportFunc func(s store.Store, w io.Writer, opts report.Options) error

func run(cmd *cobra.Command, paths []string, fn reportFunc) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := report.Options{
		Units:     report.UnitsFor(cfg.HumanUnits()),
		Tabular:   cfg.Output.Tabular,
		BatchSize: cfg.Scan.BatchSize,
	}

	mgr := manager.New(openBtrfs, cmd.OutOrStdout())
	return mgr.Run(paths, func(s store.Store, w io.Writer) error {
		return fn(s, w, opts)
	})
}

// loadConfig reads the configuration and applies the command line on top.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if debug {
		log.SetDebugMode()
	} else if err := log.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	if rawBytes {
		cfg.Output.Units = "bytes"
	}
	if cmd.Flags().Changed("tabular") {
		if cfg.Output.Tabular, err = cmd.Flags().GetBool("tabular"); err != nil {
			return nil, err
		}
	}

	log.Debug().Str("units", cfg.Output.Units).Bool("tabular", cfg.Output.Tabular).
		Int("batch_size", cfg.Scan.BatchSize).Msg("Configuration loaded")
	return cfg, nil
}

func openBtrfs(path string) (store.Store, error) {
	s, err := btrfs.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
