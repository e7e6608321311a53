// Package engine runs batches of cube conversions on a bounded worker pool
// and reports progress through a per-batch event queue.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/fits2ser/internal/analyzer"
	"github.com/ivlev/fits2ser/internal/config"
	"github.com/ivlev/fits2ser/internal/fault"
	"github.com/ivlev/fits2ser/internal/slicer"
	"github.com/ivlev/fits2ser/internal/source"
	"github.com/ivlev/fits2ser/internal/system"
	"github.com/ivlev/fits2ser/internal/video"
)

// Submission refusals. Each is returned wrapped as a config error.
var (
	ErrEmptyInput     = errors.New("no input files")
	ErrNoOutputDir    = errors.New("output directory not set")
	ErrAlreadyRunning = errors.New("a batch is already running")
)

// Options are the per-batch switches chosen by the caller.
type Options struct {
	ProduceVideo bool
	DeleteFrames bool
}

// Converter runs at most one batch at a time.
type Converter struct {
	Config    *config.Config
	Source    source.Source
	Encoder   video.VideoEncoder
	Stretcher analyzer.Stretcher
	Slicer    *slicer.Slicer
	Logger    *slog.Logger

	running atomic.Bool
}

func NewConverter(cfg *config.Config, src source.Source, ve video.VideoEncoder, st analyzer.Stretcher) *Converter {
	return &Converter{
		Config:    cfg,
		Source:    src,
		Encoder:   ve,
		Stretcher: st,
		Slicer:    slicer.New(cfg.FrameExt),
		Logger:    slog.Default(),
	}
}

// New wires a converter for FITS input and SER output from cfg.
func New(cfg *config.Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fault.Config("config", err)
	}
	st, err := cfg.NewStretcher()
	if err != nil {
		return nil, fault.Config("config", err)
	}
	src := source.NewFITSSource(cfg.Keys.CaptureStart, cfg.Keys.CaptureEnd)
	return NewConverter(cfg, src, video.NewSEREncoder(), st), nil
}

// Running reports whether a batch is in progress.
func (c *Converter) Running() bool {
	return c.running.Load()
}

// Submit starts converting inputs into outputDir and returns immediately.
// Exactly one JobOutcome per element of inputs, repeats included, and then
// one BatchSummary are delivered through the returned batch.
func (c *Converter) Submit(inputs []string, outputDir string, opts Options) (*Batch, error) {
	if len(inputs) == 0 {
		return nil, fault.Config("submit batch", ErrEmptyInput)
	}
	if outputDir == "" {
		return nil, fault.Config("submit batch", ErrNoOutputDir)
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil, fault.Config("submit batch", ErrAlreadyRunning)
	}

	jobs := c.plan(inputs, outputDir, opts)
	b := newBatch(uuid.NewString(), len(jobs))
	go c.run(b, jobs)
	return b, nil
}

// plan assigns every input its own output directory. Inputs that share a
// base name get numbered directories so that no two jobs write to one place.
func (c *Converter) plan(inputs []string, outputDir string, opts Options) []Job {
	jobs := make([]Job, 0, len(inputs))
	claimed := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		dirName := c.Config.ScanPrefix + base
		for n := 2; claimed[dirName]; n++ {
			dirName = fmt.Sprintf("%s%s_%d", c.Config.ScanPrefix, base, n)
		}
		claimed[dirName] = true
		jobs = append(jobs, Job{
			Index:   i,
			Input:   in,
			Base:    base,
			Dir:     filepath.Join(outputDir, dirName),
			Options: opts,
		})
	}
	return jobs
}

func (c *Converter) workers(jobs int) int {
	n := c.Config.Workers
	if n <= 0 {
		n = system.WorkerCount()
	}
	if n > jobs {
		n = jobs
	}
	return max(n, 1)
}

func (c *Converter) run(b *Batch, jobs []Job) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := c.workers(len(jobs))
	logger.Debug("batch started", "batch", b.ID, "jobs", len(jobs), "workers", workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			out := c.runJob(b, job)
			logger.Debug("job finished", "batch", b.ID, "file", out.File, "success", out.Success, "duration", out.Duration)
			b.record(out)
			return nil
		})
	}
	_ = g.Wait()

	summary := b.summarize()
	logger.Debug("batch finished", "batch", b.ID, "succeeded", summary.Succeeded, "failed", summary.Failed,
		"elapsed", summary.Elapsed.Round(time.Millisecond))

	c.running.Store(false)
	b.finish(summary)
}
