package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpuguy83/dayplan/internal/calendar"
	"github.com/cpuguy83/dayplan/internal/config"
	"github.com/cpuguy83/dayplan/internal/filter"
	"github.com/cpuguy83/dayplan/internal/render"
	"github.com/cpuguy83/dayplan/internal/store"
	"github.com/cpuguy83/dayplan/internal/store/caldavstore"
	"github.com/cpuguy83/dayplan/internal/store/icsfeed"
	"github.com/cpuguy83/dayplan/internal/store/outlook"
)

type todayOptions struct {
	// asJSON emits the normalized events as JSON instead of a table.
	asJSON bool
	// allDay includes all-day events in the table regardless of config.
	allDay bool
}

func newTodayCmd(configPath *string) *cobra.Command {
	var opts todayOptions

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Fetch and print today's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToday(cmd, *configPath, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit events as JSON")
	cmd.Flags().BoolVar(&opts.allDay, "all-day", false, "include all-day events")

	return cmd
}

func runToday(cmd *cobra.Command, configPath string, opts todayOptions) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	st, err := newStore(cfg, loc)
	if err != nil {
		return err
	}

	fl, err := filter.New(cfg.Filters)
	if err != nil {
		return fmt.Errorf("compile filters: %w", err)
	}

	fetcher := &calendar.Fetcher{
		Store:            st,
		Location:         loc,
		OffsetCorrection: cfg.OffsetCorrection,
		RestrictLayout:   cfg.RestrictLayout,
	}

	slog.Debug("fetching schedule", "store", cfg.Store, "timezone", loc.String())

	events, err := fetcher.FetchToday(cmd.Context())
	if err != nil {
		var unavail *calendar.StoreUnavailableError
		if errors.As(err, &unavail) {
			slog.Error("calendar store unavailable", "op", unavail.Op, "error", unavail.Err)
		}
		return err
	}

	events = fl.Apply(events)

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	out := render.Schedule(events, render.Options{
		Title:      cfg.Render.Title,
		ShowAllDay: cfg.Render.ShowAllDay || opts.allDay,
	})
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// newStore builds the configured backend.
func newStore(cfg *config.Config, loc *time.Location) (store.Store, error) {
	switch cfg.Store {
	case "outlook":
		return outlook.New(), nil
	case "ics":
		if cfg.ICS.Source == "" {
			return nil, errors.New("ics store selected but ics.source is not set")
		}
		pw, err := cfg.ICS.GetPassword()
		if err != nil {
			return nil, fmt.Errorf("resolve ics password: %w", err)
		}
		return icsfeed.New(cfg.ICS.Source, cfg.ICS.Username, pw, loc, cfg.RestrictLayout), nil
	case "caldav":
		if cfg.CalDAV.URL == "" {
			return nil, errors.New("caldav store selected but caldav.url is not set")
		}
		pw, err := cfg.CalDAV.GetPassword()
		if err != nil {
			return nil, fmt.Errorf("resolve caldav password: %w", err)
		}
		return caldavstore.New(cfg.CalDAV.URL, cfg.CalDAV.Username, pw, cfg.CalDAV.Calendar, loc, cfg.RestrictLayout), nil
	default:
		return nil, fmt.Errorf("unknown store %q (expected outlook, ics, or caldav)", cfg.Store)
	}
}
