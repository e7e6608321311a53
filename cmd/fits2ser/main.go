package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ivlev/fits2ser/internal/config"
	"github.com/ivlev/fits2ser/internal/engine"
	"github.com/ivlev/fits2ser/internal/events"
	"github.com/ivlev/fits2ser/internal/report"
	"github.com/ivlev/fits2ser/internal/system"
)

const pollInterval = 100 * time.Millisecond

func main() {
	configPtr := flag.String("config", "", "YAML-файл конфигурации")
	outputPtr := flag.String("output", "", "Директория результатов (по умолчанию: директория первого входного файла)")
	videoPtr := flag.Bool("video", true, "Собирать SER-видео для каждого файла")
	deletePtr := flag.Bool("delete-frames", false, "Удалять кадры после записи видео")
	workersPtr := flag.Int("workers", -1, "Параллельные задачи (0 - по числу CPU)")
	previewPtr := flag.Bool("preview", false, "Сохранять PNG-превью среднего кадра")
	reportPtr := flag.Bool("report", true, "Писать YAML-отчет о пакете в директорию результатов")
	stretchPtr := flag.String("stretch", "", "Метод растяжки: percentile, minmax")
	inspectPtr := flag.Bool("inspect", false, "Показать заголовок и метки времени указанных SER-файлов и выйти")
	saveConfigPtr := flag.String("save-config", "", "Сохранить итоговую конфигурацию (файл, env и флаги) в YAML и выйти")
	verbosePtr := flag.Bool("v", false, "Подробная диагностика движка")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Использование: %s [флаги] <file.fits|dir>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && *saveConfigPtr == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *inspectPtr {
		failed := false
		for _, path := range flag.Args() {
			if err := inspect(os.Stdout, path); err != nil {
				log.Printf("[-] %s: %v", path, err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	system.InitResourceLimits()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	// Флаги перекрывают конфигурацию, только если заданы явно.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputDir = *outputPtr
		case "video":
			cfg.ProduceVideo = *videoPtr
		case "delete-frames":
			cfg.DeleteFrames = *deletePtr
		case "workers":
			cfg.Workers = *workersPtr
		case "preview":
			cfg.Preview = *previewPtr
		case "report":
			cfg.Report = *reportPtr
		case "stretch":
			cfg.Stretch.Method = *stretchPtr
		}
	})

	if *saveConfigPtr != "" {
		if err := saveConfig(cfg, *saveConfigPtr); err != nil {
			log.Fatalf("[-] Не удалось сохранить конфигурацию: %v", err)
		}
		fmt.Printf("[+++] Конфигурация сохранена: %s\n", *saveConfigPtr)
		return
	}

	inputs, err := system.ExpandInputs(flag.Args())
	if err != nil {
		log.Fatalf("[-] Ошибка входных данных: %v", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Dir(inputs[0])
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatalf("[-] Не удалось создать директорию результатов: %v", err)
	}

	conv, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	fmt.Printf("[*] %s\n", system.TakeSnapshot())
	fmt.Printf("[*] Файлов: %d -> %s\n", len(inputs), cfg.OutputDir)

	batch, err := conv.Submit(inputs, cfg.OutputDir, engine.Options{
		ProduceVideo: cfg.ProduceVideo,
		DeleteFrames: cfg.DeleteFrames,
	})
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	summary, outcomes := consume(batch)
	if cfg.Report {
		path := report.Path(cfg.OutputDir, summary.BatchID)
		if err := report.Write(report.New(summary, outcomes), path); err != nil {
			log.Printf("[!] Не удалось записать отчет: %v", err)
		} else {
			fmt.Printf("[*] Отчет: %s\n", path)
		}
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// saveConfig пишет cfg в YAML, только если он проходит проверку.
func saveConfig(cfg *config.Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Save(path)
}

// consume опрашивает пакет до прихода итога и печатает каждое событие.
func consume(batch *engine.Batch) (events.BatchSummary, []events.JobOutcome) {
	var outcomes []events.JobOutcome
	bar := progressbar.NewOptions(batch.Total,
		progressbar.OptionSetDescription("Конвертация"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		for _, ev := range batch.Poll() {
			_ = bar.Clear()
			switch e := ev.(type) {
			case events.LogEvent:
				if line := render(e); line != "" {
					fmt.Println(line)
				}
			case events.JobOutcome:
				fmt.Println(renderOutcome(e))
				outcomes = append(outcomes, e)
				_ = bar.Add(1)
			case events.BatchSummary:
				_ = bar.Finish()
				fmt.Println(renderSummary(e))
				return e, outcomes
			}
			_ = bar.RenderBlank()
		}
	}
	return events.BatchSummary{}, outcomes
}
