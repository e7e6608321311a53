package main

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/ivlev/fits2ser/internal/events"
)

// messages сопоставляет ключам событий текст для консоли. Аргументы берутся
// из события по имени в указанном порядке.
var messages = map[string]struct {
	format string
	args   []string
}{
	events.KeyJobStarted:    {"[*] Обработка %s", []string{"file"}},
	events.KeyCubeLoaded:    {"[>] %s: %dx%d, кадров: %d", []string{"file", "width", "height", "frames"}},
	events.KeyCubeStretched: {"[>] %s: растяжка %s, черный %.2f, белый %.2f", []string{"file", "method", "black", "white"}},
	events.KeyPreviewSaved:  {"[>] Превью: %s", []string{"path"}},
	events.KeyFramesDeleted: {"[>] %s: удалено кадров: %d", []string{"file", "count"}},
	events.KeyJobFailed:     {"[!] %s: сбой на шаге %s (%s): %s", []string{"file", "step", "kind", "message"}},
}

func render(e events.LogEvent) string {
	switch e.Key {
	case events.KeyFrameSaved:
		// Слишком часто для консоли, прогресс показывает полоса.
		return ""
	case events.KeyVideoSaved:
		size := datasize.ByteSize(toUint64(e.Args["bytes"]))
		return fmt.Sprintf("[>] Видео: %s (кадров: %v, %s)", e.Args["path"], e.Args["frames"], size.HumanReadable())
	}

	m, ok := messages[e.Key]
	if !ok {
		return fmt.Sprintf("[?] %s %v", e.Key, e.Args)
	}
	args := make([]any, len(m.args))
	for i, name := range m.args {
		args[i] = e.Args[name]
	}
	return fmt.Sprintf(m.format, args...)
}

func renderOutcome(o events.JobOutcome) string {
	if o.Success {
		return fmt.Sprintf("[+] %s готово за %s", o.File, o.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("[-] %s: %s", o.File, o.Error.Message)
}

func renderSummary(s events.BatchSummary) string {
	marker := "[+++]"
	if s.Failed > 0 {
		marker = "[!]"
	}
	return fmt.Sprintf("%s Пакет %s: успешно %d из %d, с ошибками %d, за %s",
		marker, s.BatchID, s.Succeeded, s.Total, s.Failed, s.Elapsed.Round(time.Millisecond))
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case int64:
		return uint64(n)
	case int:
		return uint64(n)
	case uint64:
		return n
	}
	return 0
}
