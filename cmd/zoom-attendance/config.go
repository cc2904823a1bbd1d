// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/export"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/hubspot"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/service"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/utils"
)

const defaultEnvFile = ".env"

// flags are the command line flags for the attendance sync.
type flags struct {
	Debug           bool
	Date            string
	SyncCRM         bool
	Format          export.Format
	XLSXPath        string
	InstancePolicy  string
	Workers         int
	MaxRetries      int
	ContinueOnError bool
	EnvFile         string
}

// environment are the environment variables for the attendance sync.
type environment struct {
	Zoom           api.Config
	HubSpot        hubspot.Config
	Timezone       string
	InstancePolicy string
}

// parseFlags parses command line flags for the attendance sync
func parseFlags(args []string, output io.Writer) (flags, error) {
	fs := flag.NewFlagSet("zoom-attendance", flag.ContinueOnError)
	fs.SetOutput(output)

	var debug = fs.Bool("d", false, "enable debug logging")
	var date = fs.String("date", "", "target date as YYYY-MM-DD (default: today in the attendance timezone)")
	var syncCRM = fs.Bool("sync-crm", false, "upsert attendees as HubSpot contacts")
	var format = fs.String("format", string(export.FormatTable), "output format: table or json")
	var xlsxPath = fs.String("xlsx", "", "also write the attendance table to this .xlsx file")
	var policy = fs.String("instance-policy", "", "meeting instance to read participants from: last, latest, matched or detail")
	var workers = fs.Int("workers", 1, "concurrent Zoom and HubSpot calls")
	var maxRetries = fs.Int("max-retries", 0, "retries for Zoom 5xx, 429 and network errors")
	var continueOnError = fs.Bool("continue-on-error", false, "keep syncing contacts after a CRM write fails")
	var envFile = fs.String("env", defaultEnvFile, "dotenv file to load")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if fs.NArg() > 0 {
		return flags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	outputFormat, err := export.ParseFormat(*format)
	if err != nil {
		return flags{}, err
	}
	targetDate := *date
	if targetDate != "" {
		normalized, err := models.ParseTargetDate(targetDate)
		if err != nil {
			return flags{}, domain.NewValidationError("-date must be YYYY-MM-DD", err)
		}
		targetDate = normalized
	}
	if *workers < 1 {
		return flags{}, domain.NewValidationError("-workers must be at least 1")
	}
	if *maxRetries < 0 {
		return flags{}, domain.NewValidationError("-max-retries must not be negative")
	}

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			return flags{}, err
		}
	}

	return flags{
		Debug:           *debug,
		Date:            targetDate,
		SyncCRM:         *syncCRM,
		Format:          outputFormat,
		XLSXPath:        *xlsxPath,
		InstancePolicy:  *policy,
		Workers:         *workers,
		MaxRetries:      *maxRetries,
		ContinueOnError: *continueOnError,
		EnvFile:         *envFile,
	}, nil
}

// loadEnvFile loads path into the process environment. Variables already set
// are kept. A missing default file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) && path == defaultEnvFile {
		slog.Debug("no env file loaded", "path", path)
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// parseEnv parses environment variables for the attendance sync. The HubSpot
// token is only required when the CRM sync is enabled.
func parseEnv(syncCRM bool) (environment, error) {
	var missing []string
	require := func(key string) string {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	env := environment{
		Zoom: api.Config{
			AccountID:    require("ZOOM_ACCOUNT_ID"),
			ClientID:     require("ZOOM_CLIENT_ID"),
			ClientSecret: require("ZOOM_CLIENT_SECRET"),
			BaseURL:      os.Getenv("ZOOM_BASE_URL"),
			AuthURL:      os.Getenv("ZOOM_AUTH_URL"),
		},
		HubSpot: hubspot.Config{
			BaseURL: os.Getenv("HUBSPOT_BASE_URL"),
		},
		Timezone:       os.Getenv("ATTENDANCE_TIMEZONE"),
		InstancePolicy: os.Getenv("INSTANCE_POLICY"),
	}
	if syncCRM {
		env.HubSpot.AccessToken = require("HUBSPOT_ACCESS_TOKEN")
	}

	if raw := os.Getenv("ZOOM_PAGE_SIZE"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return environment{}, domain.NewValidationError(fmt.Sprintf("invalid ZOOM_PAGE_SIZE %q", raw), err)
		}
		env.Zoom.PageSize = pageSize
	}

	if len(missing) > 0 {
		return environment{}, domain.NewValidationError(
			fmt.Sprintf("required environment variable(s) not set: %s", strings.Join(missing, ", ")))
	}
	return env, nil
}

// serviceConfig merges flags over the environment.
func serviceConfig(f flags, env environment) (service.ServiceConfig, error) {
	loc, err := service.LoadLocation(utils.Coalesce(env.Timezone, service.DefaultTimezone))
	if err != nil {
		return service.ServiceConfig{}, err
	}

	policy, err := service.ParseInstancePolicy(utils.Coalesce(f.InstancePolicy, env.InstancePolicy))
	if err != nil {
		return service.ServiceConfig{}, err
	}

	return service.ServiceConfig{
		Location:        loc,
		InstancePolicy:  policy,
		Workers:         f.Workers,
		ContinueOnError: f.ContinueOnError,
	}, nil
}

func logStartup(ctx context.Context, f flags, cfg service.ServiceConfig) {
	slog.DebugContext(ctx, "configuration",
		"date", f.Date,
		"timezone", cfg.Location.String(),
		"instance_policy", cfg.InstancePolicy,
		"workers", cfg.Workers,
		"max_retries", f.MaxRetries,
		"sync_crm", f.SyncCRM,
		"format", f.Format,
		"xlsx", f.XLSXPath)
}
