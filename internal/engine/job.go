package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/ivlev/fits2ser/internal/analyzer"
	"github.com/ivlev/fits2ser/internal/events"
	"github.com/ivlev/fits2ser/internal/fault"
	"github.com/ivlev/fits2ser/internal/preview"
	"github.com/ivlev/fits2ser/internal/slicer"
	"github.com/ivlev/fits2ser/internal/source"
	"github.com/ivlev/fits2ser/internal/timecode"
	"github.com/ivlev/fits2ser/internal/video"
)

// Pipeline steps, as reported in ErrorDetail.Step.
const (
	StepLoad    = "load"
	StepStretch = "stretch"
	StepSlice   = "slice"
	StepPreview = "preview"
	StepEncode  = "encode"
	StepDelete  = "delete"
)

// Job is one input file and where its artifacts go.
type Job struct {
	Index   int
	Input   string
	Base    string
	Dir     string
	Options Options
}

// VideoPath is the SER file written for the job.
func (j Job) VideoPath(ext string) string {
	return filepath.Join(j.Dir, j.Base+ext)
}

// PreviewPath is the quicklook PNG written for the job.
func (j Job) PreviewPath() string {
	return filepath.Join(j.Dir, j.Base+"_preview.png")
}

type jobRun struct {
	job    Job
	batch  *Batch
	step   string
	frames []string
	video  string
}

// runJob never panics and never returns an error: every failure ends up in
// the returned outcome.
func (c *Converter) runJob(b *Batch, job Job) (out events.JobOutcome) {
	started := time.Now()
	r := &jobRun{job: job, batch: b}

	defer func() {
		if p := recover(); p != nil {
			err := fault.Input(r.step, fmt.Errorf("panic: %v", p))
			out = r.fail(err, started)
			out.Error.Stack = string(debug.Stack())
		}
	}()

	b.log(events.KeyJobStarted, job.Input, events.Args{"file": job.Input})
	if err := c.process(r); err != nil {
		return r.fail(err, started)
	}
	return events.JobOutcome{
		File:     job.Input,
		Success:  true,
		Frames:   len(r.frames),
		Video:    r.video,
		Duration: time.Since(started),
	}
}

func (r *jobRun) fail(err error, started time.Time) events.JobOutcome {
	kind := string(fault.KindOf(err))
	r.batch.log(events.KeyJobFailed, r.job.Input, events.Args{
		"file":    r.job.Input,
		"kind":    kind,
		"step":    r.step,
		"message": err.Error(),
	})
	return events.JobOutcome{
		File:    r.job.Input,
		Success: false,
		Error: &events.ErrorDetail{
			Kind:    kind,
			Step:    r.step,
			Message: err.Error(),
		},
		Frames:   len(r.frames),
		Duration: time.Since(started),
	}
}

// process runs load, stretch, slice, preview, encode and delete in order.
func (c *Converter) process(r *jobRun) error {
	job, b := r.job, r.batch
	file := job.Input

	r.step = StepLoad
	cube, err := c.Source.Load(file)
	if err != nil {
		return err
	}
	b.log(events.KeyCubeLoaded, file, events.Args{
		"file":   file,
		"width":  cube.Width,
		"height": cube.Height,
		"frames": cube.Frames,
		"start":  cube.CaptureStart,
		"end":    cube.CaptureEnd,
	})

	r.step = StepStretch
	stretched, levels := analyzer.Stretch(c.Stretcher, cube.Data)
	b.log(events.KeyCubeStretched, file, events.Args{
		"file":   file,
		"method": c.Stretcher.Name(),
		"black":  levels.Black,
		"white":  levels.White,
	})
	// Release the float samples before writing frames.
	cube.Data = nil

	r.step = StepSlice
	r.frames, err = c.Slicer.Slice(cube, stretched, job.Dir, job.Base, func(i int, path string) {
		b.log(events.KeyFrameSaved, file, events.Args{
			"file":  file,
			"index": i + 1,
			"total": cube.Frames,
			"path":  path,
		})
	})
	if err != nil {
		return err
	}

	if c.Config.Preview {
		r.step = StepPreview
		if err := c.writePreview(r, cube, stretched); err != nil {
			return err
		}
	}

	if !job.Options.ProduceVideo {
		return nil
	}

	r.step = StepEncode
	res, err := c.Encoder.Encode(r.frames, job.VideoPath(c.Config.VideoExt), c.videoParams(cube, len(r.frames)))
	if err != nil {
		return err
	}
	r.video = res.Path
	b.log(events.KeyVideoSaved, file, events.Args{
		"file":   file,
		"path":   res.Path,
		"frames": res.Frames,
		"bytes":  res.Bytes,
	})

	if job.Options.DeleteFrames {
		r.step = StepDelete
		if err := deleteFrames(r.frames); err != nil {
			return err
		}
		b.log(events.KeyFramesDeleted, file, events.Args{"file": file, "count": len(r.frames)})
	}
	return nil
}

func (c *Converter) writePreview(r *jobRun, cube *source.Cube, stretched []uint16) error {
	frame := slicer.Extract(cube, stretched, cube.Frames/2)
	path := r.job.PreviewPath()
	if err := preview.Write(path, frame, cube.Width, cube.Height, preview.DefaultMaxEdge); err != nil {
		return err
	}
	r.batch.log(events.KeyPreviewSaved, r.job.Input, events.Args{"file": r.job.Input, "path": path})
	return nil
}

// videoParams fills the SER text fields from config, falling back to the
// cube's own header cards.
func (c *Converter) videoParams(cube *source.Cube, frames int) video.Params {
	pick := func(override, card string) string {
		if override != "" {
			return override
		}
		return cube.Text(card)
	}
	return video.Params{
		Width:       cube.Width,
		Height:      cube.Height,
		ColorID:     c.Config.SER.ColorID,
		Observer:    pick(c.Config.SER.Observer, "OBSERVER"),
		Instrument:  pick(c.Config.SER.Instrument, "INSTRUME"),
		Telescope:   pick(c.Config.SER.Telescope, "TELESCOP"),
		HeaderTicks: timecode.FromTime(cube.CaptureStart),
		Timestamps:  timecode.Span(cube.CaptureStart, cube.CaptureEnd, frames),
	}
}

func deleteFrames(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return fault.IO("delete frames", errors.Join(errs...))
}
