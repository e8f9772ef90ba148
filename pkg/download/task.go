package download

import (
	"context"
	"crypto/sha1" //nolint:gosec // upstream manifests publish sha1 digests
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/model"
)

// execute runs task i to a terminal state.
func (o *Orchestrator) execute(ctx context.Context, run *Run, i int) {
	req := run.requirement(i)
	start := time.Now()
	o.opts.Metrics.TaskStarted()
	run.advance(i, model.TaskInProgress, 0, 0, nil)

	written, err := o.transfer(ctx, run, i, req)

	state := model.TaskCompleted
	if err != nil {
		state = model.TaskFailed
		run.advance(i, model.TaskFailed, 0, written, err)
		logger.Debug("Download failed", logger.Fields{"url": req.URL, "path": req.Path, "error": err.Error()})
	} else {
		// Completed is always preceded by InProgress(100)
		run.advance(i, model.TaskInProgress, 100, written, nil)
		run.advance(i, model.TaskCompleted, 100, written, nil)
	}
	o.opts.Metrics.TaskFinished(state, written, time.Since(start))
}

// transfer streams req.URL into req.Path and verifies the result. It returns
// the number of bytes written to the destination.
func (o *Orchestrator) transfer(ctx context.Context, run *Run, i int, req model.FileRequirement) (int64, error) {
	taskCtx := ctx
	if o.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, o.opts.TaskTimeout)
		defer cancel()
	}

	resp, err := o.transport.Get(taskCtx, req.URL)
	if err != nil {
		return 0, classifyNetwork(ctx, taskCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if !resp.OK() {
		return 0, errors.ErrHTTPStatus(req.URL, resp.StatusCode)
	}

	if err := fsutil.EnsureFileDir(req.Path); err != nil {
		return 0, errors.Classify(errors.ErrFilesystem, err)
	}
	f, err := os.OpenFile(req.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return 0, errors.Classify(errors.ErrFilesystem, err)
	}

	hasher := sha1.New() //nolint:gosec
	lastPercent := 0
	pw := &ProgressWriter{
		Writer: io.MultiWriter(fileWriter{f}, hasher),
		Total:  req.Size,
		OnUpdate: func(written, total int64) {
			// an event only when the integer percentage grows
			if p := Percent(written, total); p > lastPercent {
				lastPercent = p
				run.advance(i, model.TaskInProgress, p, written, nil)
			}
		},
	}

	// one byte past the declared size is enough to fail the size check
	_, copyErr := io.Copy(pw, io.LimitReader(resp.Body, req.Size+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil && errors.Is(copyErr, errors.ErrFilesystem):
		return pw.Written, copyErr
	case copyErr != nil:
		return pw.Written, classifyNetwork(ctx, taskCtx, copyErr)
	case closeErr != nil:
		return pw.Written, errors.Classify(errors.ErrFilesystem, closeErr)
	}

	// a mismatching file stays in place; its size keeps it from satisfying later checks
	if pw.Written != req.Size {
		return pw.Written, errors.ErrSizeMismatch(req.Path, req.Size, pw.Written)
	}
	if req.SHA1 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if want := fsutil.NormalizeHex(req.SHA1); got != want {
			return pw.Written, errors.ErrHashMismatch(req.Path, want, got)
		}
	}
	return pw.Written, nil
}

// fileWriter tags write failures as filesystem errors so they are not
// mistaken for network failures of the body reader.
type fileWriter struct {
	f *os.File
}

func (w fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		return n, errors.Classify(errors.ErrFilesystem, err)
	}
	return n, nil
}

// classifyNetwork maps a transport or body read error onto the taxonomy.
func classifyNetwork(parent, taskCtx context.Context, err error) error {
	switch {
	case parent.Err() != nil:
		return errors.Classify(errors.ErrCancelled, err)
	case errors.Is(taskCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return errors.Classify(errors.ErrTimeout, err)
	default:
		return errors.Classify(errors.ErrNetwork, err)
	}
}
