// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the attendance sync CLI. It prints the participants of every
// Zoom meeting held on one day and optionally upserts them as HubSpot contacts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/export"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/hubspot"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/service"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// errSyncIncomplete is returned when some CRM writes failed under -continue-on-error.
var errSyncIncomplete = errors.New("CRM sync completed with failures")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit status: 2 for invalid
// flags or configuration, 1 when the sync itself fails.
func execute(args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if err := loadEnvFile(f.EnvFile); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logging.InitStructureLogConfig()

	env, err := parseEnv(f.SyncCRM)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("invalid configuration")
		return 2
	}
	if _, err := serviceConfig(f, env); err != nil {
		slog.With(logging.ErrKey, err).Error("invalid configuration")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		return 1
	}

	runErr := run(ctx, f, env, stdout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Warn("error shutting down OpenTelemetry")
	}

	if runErr != nil {
		return 1
	}
	return 0
}

// run assembles the attendance of one day, writes it to stdout and, with
// -sync-crm, upserts the attendees into the CRM.
func run(ctx context.Context, f flags, env environment, stdout io.Writer) error {
	ctx, _ = logging.WithRunID(ctx)

	cfg, err := serviceConfig(f, env)
	if err != nil {
		slog.ErrorContext(ctx, "invalid configuration", logging.ErrKey, err)
		return err
	}
	logStartup(ctx, f, cfg)

	zoomConfig := env.Zoom
	zoomConfig.MaxRetries = f.MaxRetries
	zoomClient := api.NewClient(zoomConfig)

	catalog := service.NewMeetingCatalog(zoomClient, cfg)
	resolver := service.NewParticipantResolver(zoomClient, catalog, cfg)
	attendance := service.NewAttendanceService(catalog, resolver, cfg)

	rows, err := attendance.GetAttendance(ctx, f.Date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to assemble attendance", logging.ErrKey, err, logging.PriorityCritical())
		return err
	}

	if err := export.Write(stdout, f.Format, rows); err != nil {
		slog.ErrorContext(ctx, "failed to write attendance", logging.ErrKey, err)
		return err
	}

	if f.XLSXPath != "" {
		if err := export.SaveXLSX(f.XLSXPath, rows); err != nil {
			slog.ErrorContext(ctx, "failed to write workbook", logging.ErrKey, err)
			return err
		}
		slog.InfoContext(ctx, "wrote workbook", "path", f.XLSXPath, "row_count", len(rows))
	}

	if !f.SyncCRM {
		return nil
	}

	crm := service.NewCRMSyncService(hubspot.NewClient(env.HubSpot), cfg)
	summary, err := crm.Sync(ctx, rows)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		for _, rowErr := range summary.Errors {
			slog.ErrorContext(ctx, "contact write failed", logging.ErrKey, rowErr)
		}
		slog.ErrorContext(ctx, "CRM sync incomplete", "failed", summary.Failed)
		return errSyncIncomplete
	}
	return nil
}
