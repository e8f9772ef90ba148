package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage downloaded game files",
		Long:  "Show information about and clean the local game file layout",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		manifests bool
		objects   bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached files",
		Long: `Remove cached files to free up disk space.

Manifests are the version catalog, version descriptors and asset indexes.
Objects are client jars, libraries, asset objects and extracted natives.
Without flags both are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd, manifests, objects)
		},
	}

	cmd.Flags().BoolVar(&manifests, "manifests", false, "Clean only manifests")
	cmd.Flags().BoolVar(&objects, "objects", false, "Clean only downloaded objects")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display size and file counts of the local game file layout",
		Args:  cobra.NoArgs,
		RunE:  runCacheInfo,
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the root directory of the game file layout",
		Args:  cobra.NoArgs,
		RunE:  runCacheDir,
	}
}

func cacheOperation() (*cache.Operation, *cache.DefaultManager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	manager := cache.NewManager(cfg.Layout())
	return cache.NewOperation(manager), manager, nil
}

func runCacheClean(cmd *cobra.Command, manifests, objects bool) error {
	op, manager, err := cacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.Clean(manifests, objects)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	logger.Success("Cache cleaning completed", logger.Fields{"directory": manager.GetDirectory()})
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	op, _, err := cacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.GetInfo()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	_, manager, err := cacheOperation()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), manager.GetDirectory())
	return nil
}
