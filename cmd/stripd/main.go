package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ledstrip/internal/color"
	"github.com/coreman2200/ledstrip/internal/command"
	"github.com/coreman2200/ledstrip/internal/config"
	diag "github.com/coreman2200/ledstrip/internal/diagnostics"
	"github.com/coreman2200/ledstrip/internal/led"
	"github.com/coreman2200/ledstrip/internal/render"
	"github.com/coreman2200/ledstrip/internal/transport"
	"github.com/coreman2200/ledstrip/internal/ws"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	def := config.Default()
	var (
		numLEDs    = flag.Int("leds", def.NumLEDs, "number of pixels on the strip")
		driver     = flag.String("driver", def.Driver, "driver: sim | nrz | spidev | console")
		baseColor  = flag.String("color", def.BaseColor.String(), "base color as rrggbb")
		colorOrder = flag.String("order", def.ColorOrder, "spidev bit order: wire, or a channel order like GRB")
		addr       = flag.String("addr", def.Addr, "HTTP listen address")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		noPreview  = flag.Bool("no-preview", false, "do not mirror frames to /frames")
		logLevel   = flag.String("log-level", "info", "log level: debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err != nil {
		log.Warn().Str("level", *logLevel).Msg("unknown log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Effective params (config overrides flags where available) ----
	cfg := config.Default()
	cfg.NumLEDs = *numLEDs
	cfg.Driver = *driver
	cfg.ColorOrder = *colorOrder
	cfg.Addr = *addr
	cfg.Preview = !*noPreview
	if c, err := color.ParseHex(*baseColor); err != nil {
		log.Warn().Err(err).Msg("bad -color; using white")
	} else {
		cfg.BaseColor = c
	}
	if err := config.Overlay(*configPath, cfg); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	// ---- Output ----
	drv, selected := openDriver(cfg)
	hub := ws.NewHub(ws.DefaultFrameThrottle)
	out := led.Driver(drv)
	if cfg.Preview {
		out = led.Multi{drv, hub}
	}
	strip := led.NewStrip(out, cfg.NumLEDs, cfg.Power.WhiteCap)

	// ---- Control path ----
	inbox := command.NewMailbox(cfg.MailboxCapacity)
	var srv *ws.Server
	report := diag.ReporterFunc(func(d diag.Diagnostic) { srv.Report(d) })
	adapter := transport.NewAdapter(inbox, report)
	r, err := render.NewRenderer(strip, inbox, render.Options{
		NumLEDs:     cfg.NumLEDs,
		BaseColor:   cfg.BaseColor,
		BaseRate:    cfg.BaseRate,
		TickQuantum: cfg.TickQuantum(),
		OnSinkError: func(err error) {
			if err != nil {
				report(diag.Diagnostic{
					Severity: diag.Err, Code: diag.CodeSinkFailed, Summary: "LED output failing; still rendering",
					Detail: err.Error(), Evidence: map[string]any{"driver": selected},
				})
				return
			}
			report(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeSinkRecovered, Summary: "LED output recovered"})
		},
		OnCommand: func(cmd command.Command, applied bool) {
			if cmd.Kind != command.UseAnimation {
				return
			}
			if applied {
				report(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeAnimationChanged, Summary: "Animation started", Detail: cmd.String()})
			} else {
				report(diag.Diagnostic{
					Severity: diag.Warn, Code: diag.CodeAnimationUnknown, Summary: "Unknown animation; keeping the current one",
					Evidence: map[string]any{"tag": cmd.Animation[0]},
				})
			}
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("renderer")
	}
	srv = ws.NewServer(adapter, r, hub, ws.Options{Driver: selected, NumLEDs: cfg.NumLEDs, Dropped: inbox.Dropped})

	// ---- HTTP routes ----
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server ----
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go srv.Run(ctx)
	go func() {
		defer close(done)
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("render loop exited")
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", selected).Int("leds", cfg.NumLEDs).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	cancel()
	<-done
	_ = httpSrv.Close()
	if err := out.Close(); err != nil {
		log.Warn().Err(err).Msg("driver close")
	}
	log.Info().Uint64("frames", strip.Frames()).Msg("bye")
}

// openDriver picks the configured output, falling back to the simulator when
// hardware is missing.
func openDriver(cfg *config.Config) (led.Driver, string) {
	switch cfg.Driver {
	case "sim":
		return led.NewSim(), "sim"

	case "console":
		return led.NewConsole(cfg.NumLEDs), "console"

	case "nrz":
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; falling back to SIM")
			return led.NewSim(), "sim"
		}
		port := cfg.SPI.Dev
		if port == config.Default().SPI.Dev {
			port = ""
		}
		freq := led.DefaultNRZFreq
		if cfg.SPI.SpeedHz > 0 {
			freq = physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz
		}
		d, err := led.OpenNRZ(port, cfg.NumLEDs, freq)
		if err != nil {
			log.Warn().Err(err).Msg("failed to find a SPI port, printing at the console")
			return led.NewConsole(cfg.NumLEDs), "console"
		}
		return d, "nrz"

	case "spidev":
		d, err := led.NewSPIDev(cfg.SPI.Dev, cfg.NumLEDs, cfg.ColorOrder, cfg.SPI.SpeedHz, cfg.SPI.ResetUs)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spidev").
				Str("dev", cfg.SPI.Dev).
				Int("speed_hz", cfg.SPI.SpeedHz).
				Msg("SPI init failed; falling back to SIM")
			return led.NewSim(), "sim"
		}
		return d, "spidev"

	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		return led.NewSim(), "sim"
	}
}
