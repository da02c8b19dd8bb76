// Command celesun shows the solar dial's text panel in a terminal, with a
// live millisecond clock.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/engine"
	"github.com/spencer-p/celesun/pkg/logging"
	"github.com/spencer-p/celesun/pkg/precise"
	"github.com/spencer-p/celesun/pkg/settings"
	"github.com/spencer-p/celesun/pkg/solarday"
	"github.com/spencer-p/celesun/pkg/visualize"
)

const (
	clearScreen = "\033[2J"
	cursorHome  = "\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	bold        = "\033[1m"
	dim         = "\033[2m"
	yellow      = "\033[33m"
	reset       = "\033[0m"
)

type Config struct {
	Almanac       string        `default:"keep94"`
	TickInterval  time.Duration `split_words:"true" default:"1s"`
	ClockInterval time.Duration `split_words:"true" default:"50ms"`
	SettingsFile  string        `split_words:"true"`
	LogLevel      string        `split_words:"true" default:"warn"`
}

func main() {
	var env Config
	if err := envconfig.Process("celesun", &env); err != nil {
		log.Fatal(err.Error())
	}
	level, err := logging.ParseLevel(env.LogLevel)
	if err != nil {
		log.Fatal(err.Error())
	}
	logger := logging.New(os.Stderr, logging.EnvDev, level, "celesun")

	alm, err := almanac.ByName(env.Almanac)
	if err != nil {
		log.Fatal(err.Error())
	}
	path := env.SettingsFile
	if path == "" {
		if path, err = settings.DefaultPath(); err != nil {
			log.Fatal(err.Error())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	current, err := settings.FileStore{Path: path}.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "err", err)
	}
	cfg := current.EngineConfig(0)
	eng := engine.New(alm, engine.WithLogger(logger))

	// The dial is only needed once per tick but the clock line redraws
	// on every snapshot.
	snapshots := make(chan precise.Snapshot, 1)
	// The engine reports an unknown zone on the panel; the clock line
	// follows it onto UTC.
	zone, err := solarday.ResolveZone(current.TimeZone)
	if err != nil {
		logger.Warn("Falling back to UTC", "zone", current.TimeZone, "err", err)
	}
	go precise.Run(ctx, env.ClockInterval, zone, snapshots)

	ticker := time.NewTicker(env.TickInterval)
	defer ticker.Stop()

	st, model := eng.Tick(engine.State{}, time.Now(), cfg)
	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	for {
		select {
		case now := <-ticker.C:
			st, model = eng.Tick(st, now, cfg)
		case snap, ok := <-snapshots:
			if !ok {
				fmt.Print(clearScreen + cursorHome)
				fmt.Println("Goodbye!")
				return
			}
			if err := render(os.Stdout, model, current, snap); err != nil {
				logger.Error("Failed to draw", "err", err)
				return
			}
		}
	}
}

// render draws one frame of the terminal display.
func render(w io.Writer, m engine.RenderModel, s settings.Settings, clock precise.Snapshot) error {
	fmt.Fprint(w, clearScreen+cursorHome)
	fmt.Fprintf(w, "%s☀ celesun%s %s%s %s%s\n", bold, reset, dim, s.Location, m.TimeZone, reset)
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "%s%s%s\n", bold, clock.Text, reset)
	if err := visualize.WritePanel(w, m); err != nil {
		return fmt.Errorf("failed to write panel: %w", err)
	}
	for _, warning := range m.Diagnostics.Warnings {
		fmt.Fprintf(w, "%s! %s%s\n", yellow, warning, reset)
	}
	fmt.Fprintln(w, strings.Repeat("─", 40))
	_, err := fmt.Fprintf(w, "%sPress Ctrl+C to exit%s\n", dim, reset)
	return err
}
