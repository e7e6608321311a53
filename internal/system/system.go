package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/c2h5oh/datasize"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// FITSExtensions перечисляет расширения файлов, которые считаются входными FITS.
var FITSExtensions = []string{".fits", ".fts", ".fit"}

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось прочитать лимит открытых файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось поднять лимит открытых файлов: %v", err)
	}
}

// WorkerCount возвращает число логических процессоров. Если хост не отвечает,
// берется значение из рантайма Go.
func WorkerCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Snapshot описывает хост, на котором идет пакет.
type Snapshot struct {
	CPUs      int
	Available datasize.ByteSize
	Total     datasize.ByteSize
}

func (s Snapshot) String() string {
	if s.Total == 0 {
		return fmt.Sprintf("CPUs: %d", s.CPUs)
	}
	return fmt.Sprintf("CPUs: %d | RAM: %s free of %s", s.CPUs, s.Available.HumanReadable(), s.Total.HumanReadable())
}

// TakeSnapshot снимает данные о CPU и памяти. Память остается нулевой, если
// хост ее не сообщает.
func TakeSnapshot() Snapshot {
	s := Snapshot{CPUs: WorkerCount()}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.Available = datasize.ByteSize(vm.Available)
		s.Total = datasize.ByteSize(vm.Total)
	}
	return s
}

// IsFITS проверяет, что у имени файла FITS-расширение.
func IsFITS(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return lo.Contains(FITSExtensions, ext)
}

// FindFITS находит FITS-файлы непосредственно в dir, отсортированные по имени.
func FindFITS(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsFITS(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no FITS files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// ExpandInputs превращает аргументы в список FITS-файлов: директории
// сканируются, файлы берутся как есть. Повторы отбрасываются.
func ExpandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, filepath.Clean(arg))
			continue
		}
		files, err := FindFITS(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return lo.Uniq(out), nil
}
