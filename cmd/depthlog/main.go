package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/depthlog/internal/datasource"
	"github.com/vanderheijden86/depthlog/pkg/config"
	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/export"
	"github.com/vanderheijden86/depthlog/pkg/loader"
	"github.com/vanderheijden86/depthlog/pkg/models"
	"github.com/vanderheijden86/depthlog/pkg/ui"
	"github.com/vanderheijden86/depthlog/pkg/version"
	"github.com/vanderheijden86/depthlog/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	logbookFlag := flag.String("logbook", "", "Logbook directory (overrides config)")
	printFlag := flag.String("print", "", "Render the dive table to the given SVG/PNG file and exit")
	profileFlag := flag.String("profile", "", "Render a single-dive fact sheet to the given SVG/PNG file and exit")
	diveFlag := flag.Int("dive", 0, "Dive number for --profile (defaults to the newest dive)")
	formatFlag := flag.String("format", "", "Export format: svg or png (default: inferred from extension)")
	viewFlag := flag.String("view", "", "Start view: dives, stats or devices (overrides config)")
	listFlag := flag.Bool("list", false, "Start in flat list layout instead of the trip tree")
	noWatch := flag.Bool("no-watch", false, "Disable live reload on logbook changes")
	checkSources := flag.Bool("check-sources", false, "Cross-check all discovered dive-log sources for inconsistencies and exit")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: depthlog [options]")
		fmt.Println("\nA TUI viewer for dive logs.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("depthlog %s\n", version.Version)
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}

	basePath := *logbookFlag
	if basePath == "" {
		if lb := cfg.DefaultLogbook(); lb != nil {
			basePath = lb.ResolvedPath()
		}
	}

	logbookDir, err := loader.GetLogbookDir(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating logbook: %v\n", err)
		fmt.Fprintln(os.Stderr, "Point --logbook at a directory containing a .depthlog folder.")
		os.Exit(1)
	}

	if *checkSources {
		diffs, err := datasource.CheckLogbookConsistency(logbookDir, datasource.DefaultDiffOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Source check failed: %v\n", err)
			os.Exit(1)
		}
		if len(diffs) == 0 {
			fmt.Println("All dive-log sources agree.")
			os.Exit(0)
		}
		for _, d := range diffs {
			fmt.Print(d.Summary())
		}
		os.Exit(1)
	}

	units := divelog.Units{}
	if cfg.Units.System == "imperial" {
		units.System = divelog.Imperial
	}

	// Dives and devices load in parallel; a missing device table is fine.
	var (
		dives   []*divelog.Dive
		devices divelog.DeviceMap
	)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		dives, err = datasource.LoadDivesFromDir(logbookDir)
		return err
	})
	g.Go(func() error {
		var err error
		devices, err = datasource.LoadDevices(logbookDir)
		if err != nil {
			devices = divelog.DeviceMap{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dive log: %v\n", err)
		os.Exit(1)
	}

	if len(dives) == 0 {
		fmt.Println("No dives found in the logbook.")
		os.Exit(0)
	}

	store := divelog.NewDiveList(dives)
	if cfg.Autogroup {
		store.Autogroup()
	}

	// Headless export paths.
	if *printFlag != "" {
		m := export.BuildDiveTable(store, units)
		err := export.SaveDiveTable(export.TableOptions{
			Path:   *printFlag,
			Format: *formatFlag,
			Title:  "Dive Log",
			Model:  m,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *printFlag)
		os.Exit(0)
	}

	if *profileFlag != "" {
		dive := pickDive(store, *diveFlag)
		if dive == nil {
			fmt.Fprintf(os.Stderr, "No dive with number %d\n", *diveFlag)
			os.Exit(1)
		}
		m := models.NewProfilePrintModel(store, units)
		m.SetDive(dive)
		err := export.SaveDiveSheet(export.ProfileOptions{
			Path:   *profileFlag,
			Format: *formatFlag,
			Model:  m,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *profileFlag)
		os.Exit(0)
	}

	if cfg.UI.Headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal; use --print or --profile for headless export.")
		os.Exit(1)
	}

	opts := ui.Options{
		Units:     units,
		Autogroup: cfg.Autogroup,
		StartView: cfg.UI.DefaultView,
	}
	if *viewFlag != "" {
		opts.StartView = *viewFlag
	}
	if *listFlag || cfg.UI.Layout == "list" {
		opts.Layout = models.LayoutList
	}
	opts.Reload = func() (*divelog.DiveList, *divelog.DeviceMap, error) {
		dives, err := datasource.LoadDivesFromDir(logbookDir)
		if err != nil {
			return nil, nil, err
		}
		devs, err := datasource.LoadDevices(logbookDir)
		if err != nil {
			devs = divelog.DeviceMap{}
		}
		return divelog.NewDiveList(dives), &devs, nil
	}

	// Live reload watches the JSONL file when one exists.
	if !*noWatch {
		if jsonlPath, err := loader.FindJSONLPath(logbookDir); err == nil {
			if w, err := watcher.NewWatcher(jsonlPath); err == nil && w.Start() == nil {
				opts.Watcher = w
				defer w.Stop()
			}
		}
	}

	m := ui.NewModel(store, &devices, opts)
	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running depthlog: %v\n", err)
		os.Exit(1)
	}
}

// pickDive resolves the profile export target: an explicit dive number, or
// the newest dive for zero.
func pickDive(store *divelog.DiveList, number int) *divelog.Dive {
	if number == 0 {
		if store.Len() == 0 {
			return nil
		}
		return store.At(store.Len() - 1)
	}
	for i := 0; i < store.Len(); i++ {
		if d := store.At(i); d.Number == number {
			return d
		}
	}
	return nil
}

func runTUIProgram(m *ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set DL_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("DL_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
