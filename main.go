package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"goelfview/bytebuf"
	"goelfview/common"
)

// Configurazione del programma
type Config struct {
	Report      reportOptions
	All         bool
	Verbose     bool
	Parallel    bool
	MaxWorkers  int
	Interactive bool
	ShowHelp    bool
	ShowVersion bool
}

// Statistiche di elaborazione
type ProcessStats struct {
	mu         sync.Mutex
	Processed  int
	Failed     int
	TotalBytes int64
	Sections   int
	Segments   int
	Symbols    int
	Relocs     int
	Mismatches int
}

const versionString = "goelfview, version 0.3 (zero-copy ELF viewer)"

var (
	config = &Config{}
	stats  = &ProcessStats{}

	// Flag di comando
	showHeader   = flag.Bool("header", true, "Display the ELF file header")
	showSections = flag.Bool("sections", false, "Display the section headers")
	showSegments = flag.Bool("segments", false, "Display the program headers")
	showSymbols  = flag.Bool("symbols", false, "Display the symbol tables")
	showRelocs   = flag.Bool("relocs", false, "Display the relocation sections")
	showDynamic  = flag.Bool("dynamic", false, "Display the dynamic section")
	showAll      = flag.Bool("a", false, "Equivalent to -sections -segments -symbols -relocs -dynamic")
	doDemangle   = flag.Bool("demangle", false, "Demangle C++ and Rust symbol names")
	filter       = flag.String("filter", "", "Comma separated section names to show; a trailing '*' matches a prefix")
	doAnalyze    = flag.Bool("analyze", false, "Report section entropy, hashes and notable strings")
	doVerify     = flag.Bool("verify", false, "Run consistency checks and cross-check against elf_reader")
	verbose      = flag.Bool("v", false, "Enable verbose output")
	parallel     = flag.Bool("j", false, "Process files in parallel")
	maxWorkers   = flag.Int("workers", 4, "Maximum number of parallel workers (default: 4)")
	interactive  = flag.Bool("i", false, "Open an interactive shell on the first file")
	showHelp     = flag.Bool("help", false, "Display this help and exit")
	showVersion  = flag.Bool("version", false, "Display version information and exit")
)

// Errori personalizzati
var (
	ErrNotRegular   = errors.New("not a regular file")
	ErrChecksFailed = errors.New("verification failed")
)

// ProcessResult rappresenta il risultato dell'elaborazione di un file
type ProcessResult struct {
	Filename string
	Size     int64
	Output   string
	Stats    *reportStats
	Error    error
}

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] FILE...\n", os.Args[0])
	_, _ = fmt.Fprintln(os.Stderr, "Display information about ELF files without copying them into memory.")
	_, _ = fmt.Fprintln(os.Stderr, "")
	_, _ = fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
	_, _ = fmt.Fprintln(os.Stderr, "")
	_, _ = fmt.Fprintln(os.Stderr, "Examples:")
	_, _ = fmt.Fprintf(os.Stderr, "  %s -a /usr/bin/ls                   # Everything readelf -a would show\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  %s -sections -filter='.debug_*' a.o # Only the debug sections\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  %s -verify -j -workers=8 *.so       # Check many libraries in parallel\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  %s -i prog                          # Interactive shell\n", os.Args[0])
}

func parseFlags() {
	flag.Parse()

	config.All = *showAll
	config.Report = reportOptions{
		Header:   *showHeader,
		Sections: *showSections || config.All,
		Segments: *showSegments || config.All,
		Symbols:  *showSymbols || config.All,
		Relocs:   *showRelocs || config.All,
		Dynamic:  *showDynamic || config.All,
		Demangle: *doDemangle,
		Analyze:  *doAnalyze,
		Verify:   *doVerify,
		Filter:   *filter,
	}
	config.Verbose = *verbose
	config.Parallel = *parallel
	config.MaxWorkers = *maxWorkers
	config.Interactive = *interactive
	config.ShowHelp = *showHelp
	config.ShowVersion = *showVersion

	// Validazione parametri
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if config.MaxWorkers > 16 {
		config.MaxWorkers = 16
	}
}

func processFile(filename string, opts *reportOptions) *ProcessResult {
	result := &ProcessResult{Filename: filename}

	// Verifica esistenza e tipo del file
	fileInfo, err := os.Stat(filename)
	if err != nil {
		result.Error = fmt.Errorf("cannot access file: %w", err)
		return result
	}

	if !fileInfo.Mode().IsRegular() {
		result.Error = ErrNotRegular
		return result
	}

	result.Size = fileInfo.Size()

	err = bytebuf.With(filename, func(buf *bytebuf.Buffer) error {
		var out strings.Builder
		st, err := inspect(buf, &out, opts)
		result.Output = out.String()
		result.Stats = st
		return err
	})
	if err != nil {
		result.Error = err
		return result
	}

	if result.Stats.Failed > 0 {
		result.Error = fmt.Errorf("%w: %d checks", ErrChecksFailed, result.Stats.Failed)
	}
	return result
}

func processFilesSequential(filenames []string, opts *reportOptions) []ProcessResult {
	results := make([]ProcessResult, 0, len(filenames))

	for _, filename := range filenames {
		result := processFile(filename, opts)
		results = append(results, *result)
	}

	return results
}

// processFilesParallel returns results in the order of filenames.
func processFilesParallel(filenames []string, opts *reportOptions, workers int) []ProcessResult {
	jobs := make(chan int, len(filenames))
	results := make([]ProcessResult, len(filenames))

	// Avvia i worker
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = *processFile(filenames[idx], opts)
			}
		}()
	}

	// Invia i job
	for idx := range filenames {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()
	return results
}

func printResult(result *ProcessResult, multiple bool) {
	if multiple && result.Output != "" {
		fmt.Printf("\nFile: %s\n", result.Filename)
	}
	fmt.Print(result.Output)

	if !config.Verbose {
		return
	}
	if result.Error != nil {
		_, _ = fmt.Fprintf(os.Stderr, "  ❌ %s: %v\n", filepath.Base(result.Filename), result.Error)
	} else {
		st := result.Stats
		_, _ = fmt.Fprintf(os.Stderr, "  ✅ %s: %d bytes, %d sections, %d segments, %d symbols, %d relocations\n",
			filepath.Base(result.Filename), result.Size, st.Sections, st.Segments, st.Symbols, st.Relocs)
	}
}

func updateStats(results []ProcessResult) {
	stats.mu.Lock()
	defer stats.mu.Unlock()

	for _, result := range results {
		stats.Processed++
		if result.Error != nil {
			stats.Failed++
		}
		if result.Stats == nil {
			continue
		}
		stats.TotalBytes += result.Size
		stats.Sections += result.Stats.Sections
		stats.Segments += result.Stats.Segments
		stats.Symbols += result.Stats.Symbols
		stats.Relocs += result.Stats.Relocs
		stats.Mismatches += result.Stats.Mismatches
	}
}

func printSummary() {
	if stats.Processed == 0 {
		return
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Files processed: %d\n", stats.Processed)
	fmt.Printf("  Successful: %d\n", stats.Processed-stats.Failed)
	fmt.Printf("  Failed: %d\n", stats.Failed)
	fmt.Printf("  Bytes mapped: %d\n", stats.TotalBytes)

	if stats.Sections+stats.Segments+stats.Symbols+stats.Relocs > 0 {
		fmt.Printf("  Records decoded: %d sections, %d segments, %d symbols, %d relocations\n",
			stats.Sections, stats.Segments, stats.Symbols, stats.Relocs)
	}
	if stats.Mismatches > 0 {
		fmt.Printf("  elf_reader mismatches: %d\n", stats.Mismatches)
	}
}

func runInteractive(filename string) error {
	return bytebuf.With(filename, func(buf *bytebuf.Buffer) error {
		return runShell(newUI(), buf, os.Stdout, &config.Report)
	})
}

func main() {
	parseFlags()

	if config.ShowHelp {
		flag.Usage()
		os.Exit(0)
	}

	if config.ShowVersion {
		fmt.Println(versionString)
		os.Exit(0)
	}

	filenames := flag.Args()
	if len(filenames) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if config.Interactive {
		if err := runInteractive(filenames[0]); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s: %s: %v\n", os.Args[0], filenames[0], err)
			if common.IsMisuse(err) {
				os.Exit(2)
			}
			os.Exit(1)
		}
		return
	}

	// Elabora i file
	var results []ProcessResult
	if config.Parallel && len(filenames) > 1 {
		if config.Verbose {
			_, _ = fmt.Fprintf(os.Stderr, "Processing %d files with %d workers...\n", len(filenames), config.MaxWorkers)
		}
		results = processFilesParallel(filenames, &config.Report, config.MaxWorkers)
	} else {
		results = processFilesSequential(filenames, &config.Report)
	}

	for i := range results {
		printResult(&results[i], len(filenames) > 1)
	}

	// Aggiorna le statistiche
	updateStats(results)

	// Stampa errori non verbose
	if !config.Verbose {
		for _, result := range results {
			if result.Error != nil {
				_, _ = fmt.Fprintf(os.Stderr, "%s: %s: %v\n", os.Args[0], result.Filename, result.Error)
			}
		}
	}

	// Stampa sommario se più di un file o se verbose
	if len(filenames) > 1 || config.Verbose {
		printSummary()
	}

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
