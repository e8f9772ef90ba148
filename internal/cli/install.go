package cli

import (
	"github.com/spf13/cobra"

	"github.com/glorpus-work/blockfetch/internal/logger"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var opts installOptions

	cmd := &cobra.Command{
		Use:   "install VERSION",
		Short: "Download every file a version needs",
		Long: `Resolve a version, download the missing client jar, libraries, natives and
assets, and extract native libraries for the configured platform.

The command exits with an error when any file failed; files that were
downloaded are kept, so running it again only fetches what is missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Number of parallel downloads (0=config)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Also verify the hash of files already on disk")
	cmd.Flags().BoolVar(&opts.NoNatives, "no-natives", false, "Skip native libraries and their extraction")

	return cmd
}

func runInstall(cmd *cobra.Command, versionID string, opts installOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, opts)
	if err != nil {
		return err
	}

	summary, err := p.install(cmd.Context(), versionID, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if !summary.OK() {
		return installIncomplete(summary)
	}

	logger.Success("Version installed", logger.Fields{
		"version": versionID,
		"files":   summary.Completed,
		"bytes":   summary.Bytes,
	})
	return nil
}
