package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/blockfetch/pkg/model"
)

// resolveReport is what the resolve command prints.
type resolveReport struct {
	Version    string                        `json:"version"`
	Modded     bool                          `json:"modded"`
	Files      int                           `json:"files"`
	Bytes      int64                         `json:"bytes"`
	AssetBytes int64                         `json:"assetBytes"`
	ByKind     map[model.RequirementKind]int `json:"byKind"`
	Omitted    []string                      `json:"omitted,omitempty"`
	Requires   []model.FileRequirement       `json:"requirements,omitempty"`
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var (
		strict    bool
		noNatives bool
		list      bool
	)

	cmd := &cobra.Command{
		Use:   "resolve VERSION",
		Short: "Show which files a version still needs",
		Long: `Resolve a version for the configured platform and report the files that are
missing or stale in the local layout. Nothing is downloaded apart from the
manifests needed for resolution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], installOptions{Strict: strict, NoNatives: noNatives}, list)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Also verify the hash of files already on disk")
	cmd.Flags().BoolVar(&noNatives, "no-natives", false, "Leave native libraries out")
	cmd.Flags().BoolVar(&list, "list", false, "Print every missing file")

	return cmd
}

func runResolve(cmd *cobra.Command, versionID string, opts installOptions, list bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, opts)
	if err != nil {
		return err
	}

	resolved, reqs, err := p.plan(cmd.Context(), versionID)
	if err != nil {
		return err
	}

	report := resolveReport{
		Version:    resolved.VersionID,
		Modded:     resolved.Descriptor.IsModded(),
		Files:      len(reqs),
		AssetBytes: resolved.AssetIndex.TotalSize(),
		ByKind:     make(map[model.RequirementKind]int),
		Omitted:    resolved.Omitted,
	}
	for _, req := range reqs {
		report.ByKind[req.Kind]++
		report.Bytes += req.Size
	}
	if list {
		report.Requires = reqs
	}

	out := cmd.OutOrStdout()
	if jsonOutput(cfg) {
		return writeJSON(out, report)
	}

	_, _ = fmt.Fprintf(out, "Version %s: %d files to download (%d bytes)\n", report.Version, report.Files, report.Bytes)
	_, _ = fmt.Fprintf(out, "  assets:  %d bytes in total\n", report.AssetBytes)
	for _, kind := range []model.RequirementKind{
		model.RequirementClient,
		model.RequirementLibrary,
		model.RequirementNative,
		model.RequirementAsset,
	} {
		_, _ = fmt.Fprintf(out, "  %-8s %d\n", kind+":", report.ByKind[kind])
	}
	for _, name := range report.Omitted {
		_, _ = fmt.Fprintf(out, "  omitted  %s\n", name)
	}
	for _, req := range report.Requires {
		_, _ = fmt.Fprintf(out, "  %-7s %s\n", req.Kind, req.Path)
	}
	return nil
}
