package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	hhscan "github.com/hh-tools/hhscan"
	"github.com/hh-tools/hhscan/flags"
	"github.com/hh-tools/hhscan/harness"
	"github.com/hh-tools/hhscan/logging"
	"github.com/hh-tools/hhscan/types"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	log, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync() //nolint:errcheck

	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "hhscan"
	app.Usage = "hh.ru vacancy aggregator and coverage harness"
	app.Description = "hhscan fetches vacancies from hh.ru into a local storage file and runs the project test suite with coverage"
	app.Commands = []*cli.Command{
		{
			Name:      "fetch",
			Usage:     "Fetch vacancies matching the query and store them",
			ArgsUsage: "<query>",
			Flags:     flags.Flags,
			Action: func(ctx *cli.Context) error {
				return runFetch(ctx, log)
			},
		},
		{
			Name:      "top",
			Usage:     "Show the N stored vacancies with the highest average salary",
			ArgsUsage: "<n>",
			Flags:     flags.Flags,
			Action: func(ctx *cli.Context) error {
				return runTop(ctx, log)
			},
		},
		{
			Name:      "search",
			Usage:     "Search stored vacancies by keyword",
			ArgsUsage: "<keyword>",
			Flags:     flags.Flags,
			Action: func(ctx *cli.Context) error {
				return runSearch(ctx, log)
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete stored vacancies matching the keyword",
			ArgsUsage: "<keyword>",
			Flags:     flags.Flags,
			Action: func(ctx *cli.Context) error {
				return runDelete(ctx, log)
			},
		},
		{
			Name:  "cover",
			Usage: "Run the test suite with coverage and open the HTML report",
			Flags: flags.CoverFlags,
			Action: func(ctx *cli.Context) error {
				return runCover(ctx, log)
			},
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if hhscan.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), 2))
			} else if hhscan.IsTestFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), 1))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), 1))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error("Application failed", zap.Error(err))
		os.Exit(2)
	}
}

func newApp(ctx *cli.Context, log *zap.Logger, query string) (*hhscan.App, error) {
	cfg, err := hhscan.NewConfig(ctx, log)
	if err != nil {
		return nil, hhscan.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	app, err := hhscan.NewApp(cfg, query)
	if err != nil {
		return nil, hhscan.NewRuntimeError(err)
	}
	return app, nil
}

func runFetch(ctx *cli.Context, log *zap.Logger) error {
	query := ctx.Args().First()
	if query == "" {
		return cli.Exit("usage: hhscan fetch <query>", 2)
	}

	app, err := newApp(ctx, log, query)
	if err != nil {
		return err
	}
	if err := app.Start(ctx.Context); err != nil {
		return err
	}
	if app.Stopped() {
		return nil
	}

	// Continuous mode: block until interrupted.
	<-ctx.Context.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), hhscan.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(shutdownCtx); err != nil {
		return hhscan.NewRuntimeError(err)
	}
	return app.WaitForShutdown(shutdownCtx)
}

func runTop(ctx *cli.Context, log *zap.Logger) error {
	n := 10
	if arg := ctx.Args().First(); arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed <= 0 {
			return cli.Exit("usage: hhscan top <n>", 2)
		}
		n = parsed
	}

	app, err := newApp(ctx, log, "")
	if err != nil {
		return err
	}
	vacancies, err := app.Manager().TopBySalary(n)
	if err != nil {
		return hhscan.NewRuntimeError(err)
	}
	return hhscan.NewConsoleVacancyFormatter(os.Stdout).
		FormatVacancies(fmt.Sprintf("Top %d by salary", n), vacancies)
}

func runSearch(ctx *cli.Context, log *zap.Logger) error {
	keyword := ctx.Args().First()
	if keyword == "" {
		return cli.Exit("usage: hhscan search <keyword>", 2)
	}

	app, err := newApp(ctx, log, "")
	if err != nil {
		return err
	}
	vacancies, err := app.Manager().SearchByKeyword(keyword)
	if err != nil {
		return hhscan.NewRuntimeError(err)
	}
	return hhscan.NewConsoleVacancyFormatter(os.Stdout).
		FormatVacancies(fmt.Sprintf("Vacancies matching %q", keyword), vacancies)
}

func runDelete(ctx *cli.Context, log *zap.Logger) error {
	keyword := ctx.Args().First()
	if keyword == "" {
		return cli.Exit("usage: hhscan delete <keyword>", 2)
	}

	app, err := newApp(ctx, log, "")
	if err != nil {
		return err
	}
	if err := app.Manager().Delete(types.SearchCriteria{Keyword: keyword}); err != nil {
		return hhscan.NewRuntimeError(err)
	}
	log.Info("Deleted matching vacancies", zap.String("keyword", keyword))
	return nil
}

func runCover(ctx *cli.Context, log *zap.Logger) error {
	cfg := harness.DefaultConfig()
	if path := ctx.String(flags.CoverConfig.Name); path != "" {
		var err error
		cfg, err = harness.LoadConfigFile(path, cfg)
		if err != nil {
			return hhscan.NewRuntimeError(err)
		}
	}

	// Flags override both the defaults and the config file.
	if ctx.IsSet(flags.SourceDir.Name) {
		cfg.SourceDir = ctx.String(flags.SourceDir.Name)
	}
	if ctx.IsSet(flags.Packages.Name) {
		cfg.Packages = ctx.String(flags.Packages.Name)
	}
	if ctx.IsSet(flags.GoBinary.Name) {
		cfg.GoBinary = ctx.String(flags.GoBinary.Name)
	}
	if ctx.IsSet(flags.CoverageDir.Name) {
		cfg.CoverageDir = ctx.String(flags.CoverageDir.Name)
	}
	if ctx.IsSet(flags.CoverMode.Name) {
		cfg.CoverMode = ctx.String(flags.CoverMode.Name)
	}
	if ctx.IsSet(flags.Bootstrap.Name) {
		cfg.Bootstrap = ctx.String(flags.Bootstrap.Name)
	}
	if ctx.IsSet(flags.LogDir.Name) {
		cfg.LogDir = ctx.String(flags.LogDir.Name)
	}
	if ctx.Bool(flags.NoOpen.Name) {
		cfg.OpenReport = false
	}

	h, err := harness.New(cfg, log)
	if err != nil {
		return hhscan.NewRuntimeError(err)
	}

	result, err := h.Run(ctx.Context)
	if err != nil {
		return hhscan.NewRuntimeError(err)
	}
	if result.Failed() {
		return hhscan.NewTestFailureError(
			fmt.Sprintf("test suite failed with exit code %d (run %s)", result.TestExitCode, result.RunID))
	}
	return nil
}
