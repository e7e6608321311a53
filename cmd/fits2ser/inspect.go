package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/ivlev/fits2ser/internal/timecode"
	"github.com/ivlev/fits2ser/internal/video"
)

// inspect печатает заголовок и покадровые метки времени SER-файла.
func inspect(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	h, err := video.ReadHeader(f)
	if err != nil {
		return err
	}
	stamps, err := video.ReadTimestamps(f, fi.Size())
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", path, datasize.ByteSize(fi.Size()).HumanReadable())
	fmt.Fprintf(w, "  размер:     %dx%d, %d бит, цвет %d\n", h.Width, h.Height, h.PixelDepth, h.ColorID)
	fmt.Fprintf(w, "  кадров:     %d\n", h.FrameCount)
	fmt.Fprintf(w, "  наблюдатель: %s\n", video.Text(h.Observer))
	fmt.Fprintf(w, "  инструмент: %s\n", video.Text(h.Instrument))
	fmt.Fprintf(w, "  телескоп:   %s\n", video.Text(h.Telescope))
	fmt.Fprintf(w, "  начало:     %s\n", timecode.ToTime(int64(h.DateTimeUTC)).Format(time.RFC3339Nano))

	if stamps == nil {
		fmt.Fprintln(w, "  меток времени нет")
		return nil
	}
	for i, t := range stamps {
		fmt.Fprintf(w, "  %5d  %s\n", i+1, timecode.ToTime(t).Format(time.RFC3339Nano))
	}
	return nil
}
