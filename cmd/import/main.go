// Command import ingests every blog package in a directory, the same way
// the upload endpoint does.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/folio/internal/app"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/ingest"
	"github.com/debemdeboas/folio/internal/logger"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/joho/godotenv"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var errSomeFailed = errors.New("some packages failed to import")

type importer interface {
	IngestAs(ctx context.Context, data []byte, owner model.UserID) (*model.Post, error)
}

// importAll ingests pkgs in order and reports each result to out.
func importAll(ctx context.Context, svc importer, pkgs []pkg, owner model.UserID, cfg config.IngestConfig, out io.Writer) error {
	var imported, failed int
	for _, p := range pkgs {
		pctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		post, err := svc.IngestAs(pctx, p.Data, owner)
		cancel()

		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s %s\n",
				failStyle.Render("FAIL"),
				nameStyle.Render(p.Name),
				detailStyle.Render(ingest.Kind(err)+": "+err.Error()))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		imported++
		fmt.Fprintf(out, "%s %s %s\n",
			okStyle.Render(" OK "),
			nameStyle.Render(p.Name),
			detailStyle.Render("/"+post.Slug))
	}

	fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d imported, %d failed, %d total", imported, failed, len(pkgs))))
	if failed > 0 {
		return errSomeFailed
	}
	return nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	configPath := flags.String("config", defaultConfigPath(), "Path to the YAML configuration file")
	dir := flags.String("dir", "", "Directory containing .zip packages or package directories")
	owner := flags.String("owner", "", "User id recorded as the owner of the imported posts")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("the -dir flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	app.SetLoggers(log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	pkgs, err := collect(*dir)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		log.Warn().Str("dir", *dir).Msg("No packages found")
		return nil
	}

	return importAll(ctx, a.Ingest, pkgs, model.UserID(*owner), cfg.Ingest, out)
}

func defaultConfigPath() string {
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		return p
	}
	return "config.yaml"
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("import: ")+err.Error())
		os.Exit(1)
	}
}
