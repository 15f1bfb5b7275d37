package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/config"
	"github.com/jask/siteassess/internal/database"
	"github.com/jask/siteassess/internal/logging"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/report"
	"github.com/jask/siteassess/internal/secrets"
	"github.com/jask/siteassess/internal/store"
	"github.com/jask/siteassess/internal/tui"
	"github.com/jask/siteassess/internal/workflow"
)

func main() {
	printReport := flag.String("report", "", "Print the disaster, vastu or final report for the active building and exit")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *writeConfig {
		if err := config.Save(cfg); err != nil {
			log.Fatalf("write config: %v", err)
		}
		return
	}
	os.Exit(run(context.Background(), cfg, report.Kind(*printReport)))
}

// run owns every resource that needs closing and returns the exit code.
func run(ctx context.Context, cfg config.Config, printReport report.Kind) int {
	sink, err := logging.New().FromPath(cfg.Log.Path).Level(cfg.Log.Level).Make()
	if err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		return 1
	}
	defer sink.Close()
	logger := sink.Logger

	db, err := database.OpenMigrated(cfg.Store.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		return 1
	}
	defer db.Close()

	apiOpts := []api.Option{api.WithTimeout(cfg.API.Timeout), api.WithLogger(logger)}
	if cfg.API.Retries > 0 {
		apiOpts = append(apiOpts, api.WithRetryer(api.NewExponentialBackoff(cfg.API.Retries)))
	}
	client := api.New(cfg.API.BaseURL, apiOpts...)
	notes := notify.New(notify.WithLifetime(cfg.Notify.Lifetime))
	ctrl := workflow.New(client, store.New(db, secrets.UserSealer()), notes,
		workflow.WithLogger(logger),
		workflow.WithSurveyVerification(cfg.Workflow.VerifySurvey),
		workflow.WithRenderOptions(report.Options{DateLayout: cfg.UI.DateFormat}),
	)
	logger.Info().Str("base_url", cfg.API.BaseURL).Msg("starting")

	if printReport != "" {
		return runReport(ctx, ctrl, printReport)
	}

	app := tui.New(ctx, ctrl, notes, tui.Options{TickInterval: 250 * time.Millisecond})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		return 1
	}
	return 0
}

// runReport fetches one stored report without starting the UI.
func runReport(ctx context.Context, ctrl *workflow.Controller, kind report.Kind) int {
	if res := ctrl.Restore(ctx); res.Err != nil {
		fmt.Fprintln(os.Stderr, res.Err)
		return 1
	}
	var res workflow.Result
	switch kind {
	case report.KindDisaster:
		res = ctrl.ViewDisasterReport(ctx)
	case report.KindVastu:
		res = ctrl.ViewVastuReport(ctx)
	case report.KindFinal:
		res = ctrl.ViewFinalReport(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown report %q (want disaster, vastu or final)\n", kind)
		return 2
	}
	if !res.OK() {
		if res.Notification != nil {
			fmt.Fprintln(os.Stderr, res.Notification.Message)
		} else if res.Err != nil {
			fmt.Fprintln(os.Stderr, res.Err)
		}
		return 1
	}
	fmt.Print(report.Text(ctrl.Snapshot().LastReport.Display))
	return 0
}
