package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/blockfetch/pkg/model"
)

// NewVersionsCmd creates the versions command.
func NewVersionsCmd() *cobra.Command {
	var (
		kind       string
		constraint string
		latest     bool
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List available game versions",
		Long: `List the versions published in the version catalog.

Use --kind to restrict the list to releases or snapshots and --constraint to
filter by a version range such as ">= 1.18, < 1.21". Ids that are not plain
version numbers, like snapshot ids, never match a constraint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersions(cmd, model.VersionKind(kind), constraint, latest)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list versions of this kind (release, snapshot, old_beta, old_alpha)")
	cmd.Flags().StringVar(&constraint, "constraint", "", "Only list versions matching this constraint")
	cmd.Flags().BoolVar(&latest, "latest", false, "Only print the latest release and snapshot ids")

	return cmd
}

func runVersions(cmd *cobra.Command, kind model.VersionKind, constraint string, latest bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, installOptions{})
	if err != nil {
		return err
	}

	catalog, err := p.resolver.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if latest {
		release, _ := catalog.LatestRelease()
		snapshot, _ := catalog.LatestSnapshot()
		if jsonOutput(cfg) {
			return writeJSON(out, model.LatestVersions{Release: release.ID, Snapshot: snapshot.ID})
		}
		printLatest(out, "release:", release)
		printLatest(out, "snapshot:", snapshot)
		return nil
	}

	entries, err := catalog.Filter(kind, constraint)
	if err != nil {
		return err
	}

	if jsonOutput(cfg) {
		return writeJSON(out, entries)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No versions found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTYPE\tRELEASED")
	for _, entry := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.ID, entry.Kind, entry.ReleaseTime.Format(time.DateOnly))
	}
	return tw.Flush()
}

// printLatest prints one --latest line. Entries the catalog marks as latest
// but does not list are shown as "none".
func printLatest(out io.Writer, label string, entry model.CatalogEntry) {
	if entry.ID == "" {
		_, _ = fmt.Fprintf(out, "%-9s none\n", label)
		return
	}
	_, _ = fmt.Fprintf(out, "%-9s %s (%s)\n", label, entry.ID, entry.ReleaseTime.Format(time.DateOnly))
}
