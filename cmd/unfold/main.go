package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/behavior"
	"github.com/fwojciec/unfold/crawl"
	"github.com/fwojciec/unfold/fs"
	unfoldhttp "github.com/fwojciec/unfold/http"
	"github.com/fwojciec/unfold/rod"
	unfoldslog "github.com/fwojciec/unfold/slog"
	"github.com/fwojciec/unfold/sqlite"
	"github.com/fwojciec/unfold/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Opener overrides the browser for end-to-end testing.
	Opener unfold.PageOpener
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("unfold"),
		kong.Description("Expand dynamic page content before archiving."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'unfold --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Behaviors = behavior.DefaultBehaviors()
	if cli.Config != "" {
		behaviors, err := yaml.LoadFile(cli.Config)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", unfold.ErrorMessage(err))
			return err
		}
		deps.Behaviors = behaviors
	}

	if cmd == "run" || cmd == "runs" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set UNFOLD_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		deps.Runs = unfoldslog.NewLoggingRunService(sqlite.NewRunService(m.DB), deps.Logger)
	}

	if cmd == "preview" {
		deps.Opener = m.Opener
		if deps.Opener == nil {
			deps.Opener = unfoldhttp.NewOpener()
		}
	}

	if cmd == "run" {
		deps.Sitemaps = unfoldhttp.NewSitemapService(nil)

		opener := m.Opener
		if opener == nil && cli.Run.Static {
			opener = unfoldhttp.NewOpener(unfoldhttp.WithTimeout(cli.Run.Timeout))
		}
		if opener == nil {
			manager, err := rod.NewBrowserManager(rod.WithHeadless(cli.Run.Headless))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer manager.Close()
			opener = rod.NewOpener(manager, rod.WithNavigationTimeout(cli.Run.Timeout))
		}

		out := filepath.Clean(cli.Run.Out)
		deps.Runner = &crawl.Runner{
			Opener:      unfoldslog.NewLoggingOpener(opener, deps.Logger),
			Engine:      behavior.NewEngine(behavior.WithLogger(deps.Logger)),
			Behaviors:   deps.Behaviors,
			Runs:        deps.Runs,
			Snapshots:   fs.NewSnapshotStore(filepath.Dir(out), filepath.Base(out)),
			RateLimiter: crawl.NewDomainLimiter(cli.Run.RPS),
			Logger:      deps.Logger,
			Concurrency: cli.Run.Concurrency,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("UNFOLD_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "unfold.db"
	}
	dir := filepath.Join(home, ".unfold")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "unfold.db")
}
