package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/config"
	"github.com/glorpus-work/blockfetch/pkg/download"
	"github.com/glorpus-work/blockfetch/pkg/hooks"
	"github.com/glorpus-work/blockfetch/pkg/http"
	"github.com/glorpus-work/blockfetch/pkg/layout"
	"github.com/glorpus-work/blockfetch/pkg/manifest"
	"github.com/glorpus-work/blockfetch/pkg/metrics"
	"github.com/glorpus-work/blockfetch/pkg/model"
	"github.com/glorpus-work/blockfetch/pkg/natives"
	"github.com/glorpus-work/blockfetch/pkg/requirement"
	"github.com/glorpus-work/blockfetch/pkg/resolve"
)

// installOptions carries the install command flags that override the config.
type installOptions struct {
	Concurrency int
	Strict      bool
	NoNatives   bool
}

// pipeline wires the resolver, collector and orchestrator from one config.
type pipeline struct {
	cfg       *config.Config
	layout    layout.Layout
	resolver  *resolve.Resolver
	collector *requirement.Collector
	orch      *download.Orchestrator
	metrics   *metrics.Recorder
	hooks     *hooks.DefaultHookManager
	extractor *natives.Extractor
	opts      installOptions
}

func newPipeline(cfg *config.Config, opts installOptions) (*pipeline, error) {
	s := cfg.Settings
	l := cfg.Layout()
	transport := http.NewClient(s.HTTPTimeout, s.UserAgent)

	concurrency := s.MaxConcurrentDownloads
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	hookManager := hooks.NewHookManager()
	if err := hooks.LoadHooksFromPaths(hookManager, cfg.HookPaths()); err != nil {
		return nil, err
	}

	recorder := metrics.New(metrics.DefaultNamespace)

	return &pipeline{
		cfg:    cfg,
		layout: l,
		resolver: resolve.New(manifest.NewStore(transport), l, resolve.Options{
			CatalogURL: s.CatalogURL,
			Platform:   cfg.TargetPlatform(),
		}),
		collector: requirement.New(l, requirement.Options{
			Strict:       s.StrictVerify || opts.Strict,
			AssetBaseURL: s.AssetBaseURL,
			SkipNatives:  opts.NoNatives,
		}),
		orch: download.New(transport, download.Options{
			Concurrency: concurrency,
			TaskTimeout: s.TaskTimeout,
			Metrics:     recorder,
		}),
		metrics:   recorder,
		hooks:     hookManager,
		extractor: natives.NewExtractor(),
		opts:      opts,
	}, nil
}

// plan resolves versionID and returns the files still missing locally.
func (p *pipeline) plan(ctx context.Context, versionID string) (*model.ResolvedVersion, []model.FileRequirement, error) {
	resolved, err := p.resolver.Resolve(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	reqs, err := p.collector.Collect(resolved)
	if err != nil {
		return nil, nil, err
	}
	return resolved, reqs, nil
}

// install runs the whole pipeline for versionID and prints one line per
// terminal task to out.
func (p *pipeline) install(ctx context.Context, versionID string, out io.Writer) (download.Summary, error) {
	resolved, reqs, err := p.plan(ctx, versionID)
	if err != nil {
		return download.Summary{}, err
	}

	nativesDir, err := p.layout.NativesDir(resolved.VersionID)
	if err != nil {
		return download.Summary{}, err
	}

	root := p.layout.Root()
	if err := p.hooks.Execute(ctx, hooks.PostResolve, hooks.PostResolveContext(versionID, root, len(reqs))); err != nil {
		return download.Summary{}, err
	}

	logger.Info("Downloading files", logger.Fields{"version": versionID, "files": len(reqs)})

	extracted := make(map[string]bool)
	var extractErr error

	run := p.orch.Submit(ctx, reqs)
	for ev := range run.All() {
		if !ev.State.IsTerminal() {
			logger.Debug("Task progress", logger.Fields{"task": ev.TaskID, "state": ev.State.String(), "percent": ev.Percent})
			continue
		}
		printTaskLine(out, ev)
		if ev.State == model.TaskCompleted && ev.Kind == model.RequirementNative && !p.opts.NoNatives {
			if err := p.extractNative(ctx, ev.Path, nativesDir); err != nil && extractErr == nil {
				extractErr = err
			}
			extracted[ev.Path] = true
		}
	}

	summary, err := run.Wait(ctx)
	if err != nil {
		return summary, err
	}

	if !p.opts.NoNatives {
		if err := p.extractPresentNatives(ctx, resolved, nativesDir, extracted); err != nil && extractErr == nil {
			extractErr = err
		}
	}

	p.writeMetrics()

	hookCtx := hooks.PostDownloadContext(versionID, root, summary.Completed, summary.Failed)
	if err := p.hooks.Execute(ctx, hooks.PostDownload, hookCtx); err != nil {
		return summary, err
	}
	return summary, extractErr
}

func (p *pipeline) extractNative(ctx context.Context, archivePath, nativesDir string) error {
	if err := p.extractor.Extract(ctx, archivePath, nativesDir, nil); err != nil {
		return fmt.Errorf("extracting natives from %s: %w", archivePath, err)
	}
	logger.Debug("Extracted natives", logger.Fields{"archive": archivePath, "destination": nativesDir})
	return nil
}

// extractPresentNatives covers native archives that were already on disk
// and therefore never produced a download event.
func (p *pipeline) extractPresentNatives(ctx context.Context, resolved *model.ResolvedVersion, nativesDir string, done map[string]bool) error {
	for _, lib := range resolved.Libraries {
		if !lib.Native {
			continue
		}
		path, err := p.layout.LibraryPath(lib.Artifact.Path)
		if err != nil || done[path] {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := p.extractNative(ctx, path, nativesDir); err != nil {
			return err
		}
		done[path] = true
	}
	return nil
}

func (p *pipeline) writeMetrics() {
	path := p.cfg.Settings.MetricsTextfile
	if path == "" {
		return
	}
	if err := p.metrics.WriteToTextfile(path); err != nil {
		logger.Warn("Failed to write metrics textfile", logger.Fields{"path": path, "error": err.Error()})
	}
}

func printTaskLine(out io.Writer, ev download.Event) {
	if ev.State == model.TaskFailed {
		_, _ = fmt.Fprintf(out, "%-9s %-7s %s: %v\n", ev.State, ev.Kind, ev.Path, ev.Err)
		return
	}
	_, _ = fmt.Fprintf(out, "%-9s %-7s %s\n", ev.State, ev.Kind, ev.Path)
}

// errInstallIncomplete is returned by the install command when tasks failed.
var errInstallIncomplete = fmt.Errorf("install incomplete")

func installIncomplete(summary download.Summary) error {
	return fmt.Errorf("%w: %d of %d files failed", errInstallIncomplete, summary.Failed, summary.Total)
}
