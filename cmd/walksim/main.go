package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"walksim/internal/api"
	"walksim/pkg/config"
	"walksim/pkg/db"
	"walksim/pkg/db/maintenance"
	"walksim/pkg/geo"
	"walksim/pkg/logging"
	"walksim/pkg/model"
	"walksim/pkg/pace"
	"walksim/pkg/playback"
	"walksim/pkg/probe"
	"walksim/pkg/route"
	"walksim/pkg/routefile"
	"walksim/pkg/session"
	"walksim/pkg/sink"
	"walksim/pkg/store"
	"walksim/pkg/tracker"
	"walksim/pkg/version"
)

const defaultConfigPath = "configs/walksim.yaml"

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	hostFlag   = flag.String("host", "", "Receiver host (overrides config and WALKSIM_HOST)")
	portFlag   = flag.Int("port", 0, "Receiver port (overrides config and WALKSIM_PORT)")
	speedFlag  = flag.String("speed", "", `Walking speed, e.g. "4km/h", "1.2m/s" or "5"`)
	fromFlag   = flag.String("from", "", `Start point "lat,lon"`)
	toFlag     = flag.String("to", "", `End point "lat,lon"`)
	wpFlag     = flag.String("waypoints", "", `Waypoints "lat,lon;lat,lon;..."`)
	fileFlag   = flag.String("file", "", "Route file (.gpx, .geojson, .shp, .csv)")
	provFlag   = flag.String("provider", "", "Receiver transport: websocket, tcp or mock")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(exitConfig)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	loadEnvFiles(".env", ".env.local")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath, flagOverrides())
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "walksim: %s: %v\n", describe(err), err)
		os.Exit(exitCode(err))
	}
}

// loadEnvFiles loads every env file that exists. Variables already set win.
func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", p, err)
		}
	}
}

// overrides holds command-line values that replace config values when set.
type overrides struct {
	Host      string
	Port      int
	Speed     string
	From      string
	To        string
	Waypoints string
	File      string
	Provider  string
}

func flagOverrides() overrides {
	return overrides{
		Host:      *hostFlag,
		Port:      *portFlag,
		Speed:     *speedFlag,
		From:      *fromFlag,
		To:        *toFlag,
		Waypoints: *wpFlag,
		File:      *fileFlag,
		Provider:  *provFlag,
	}
}

// apply copies set overrides into cfg. A route flag replaces the whole route selection.
func (o overrides) apply(cfg *config.Config) error {
	if o.Host != "" {
		cfg.Receiver.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Receiver.Port = o.Port
	}
	if o.Provider != "" {
		cfg.Receiver.Provider = o.Provider
	}
	if o.Speed != "" {
		kmh, err := config.ParseSpeed(o.Speed)
		if err != nil {
			return fmt.Errorf("%w: -speed: %w", pace.ErrInvalidSpeed, err)
		}
		cfg.Walk.Speed = config.Speed(kmh)
	}

	switch {
	case o.File != "":
		cfg.Route = config.RouteConfig{File: o.File}
	case o.Waypoints != "":
		cfg.Route = config.RouteConfig{Waypoints: []string{o.Waypoints}}
	case o.From != "" || o.To != "":
		if o.From != "" {
			cfg.Route.From = o.From
		}
		if o.To != "" {
			cfg.Route.To = o.To
		}
		cfg.Route.File = ""
		cfg.Route.Waypoints = nil
	}

	return cfg.Validate()
}

func run(ctx context.Context, cfgPath string, o overrides) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := o.apply(appCfg); err != nil {
		return err
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("walksim started", "version", version.String())

	pc := pace.Config{SpeedKmh: float64(appCfg.Walk.Speed), StepsPerKm: appCfg.Walk.StepsPerKm}
	src, err := routeSource(appCfg.Route)
	if err != nil {
		return err
	}

	// History is optional: a broken database must not stop the walk.
	st, closeStore := initStore(ctx, appCfg)
	defer closeStore()

	// Startup Probes
	var rt route.Route
	probes := []probe.Probe{
		{
			Name: "Route",
			Check: func(ctx context.Context) error {
				if err := pc.Validate(); err != nil {
					return err
				}
				r, err := src.Route(ctx)
				if err != nil {
					return err
				}
				rt = r
				return nil
			},
			Critical: true,
			Timeout:  30 * time.Second,
		},
		{
			Name:     "Run History",
			Check:    historyCheck(st),
			Critical: false,
		},
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	tr := tracker.New()
	client, err := newSinkClient(appCfg, tr)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	progressH := api.NewProgressHandler()
	if appCfg.Server.Address != "" {
		var runsH *api.RunsHandler
		if st != nil {
			runsH = api.NewRunsHandler(st)
		}
		srv := api.NewServer(appCfg.Server.Address, progressH, api.NewStatsHandler(tr), runsH)
		stopServer := startServer(srv)
		defer stopServer()
	}

	engine := playback.New(pc, client,
		playback.WithRunID(runID),
		playback.WithObserver(newConsoleObserver(os.Stdout)),
		playback.WithObserver(progressH),
		playback.WithObserver(eventObserver{}),
	)

	lc := session.New(client,
		session.WithRunID(runID),
		session.WithClearTimeout(time.Duration(appCfg.Receiver.ClearTimeout)),
	)

	var rep playback.Report
	runErr := lc.Run(ctx, appCfg.Receiver.Host, appCfg.Receiver.Port, func(ctx context.Context, _ sink.DeviceSink) error {
		var err error
		rep, err = engine.Run(ctx, rt)
		return err
	})
	if rep.RunID == "" {
		// Connect failed before the engine ran.
		rep = playback.Report{RunID: runID, State: playback.StateFailed, StartedAt: time.Now(), FinishedAt: time.Now(), Err: runErr}
	}

	recordRun(st, runRecord(rep, src, client.Name(), pc, rt))

	if cerr := lc.CleanupErr(); cerr != nil {
		slog.Warn("Receiver cleanup incomplete", "error", cerr)
	}
	return runErr
}

// routeSource picks the route source. File wins over Waypoints, which win over From/To.
func routeSource(rc config.RouteConfig) (route.Source, error) {
	switch {
	case rc.File != "":
		return route.File{Path: rc.File, Parser: routefile.New()}, nil
	case len(rc.Waypoints) > 0:
		var pts route.Waypoints
		for _, w := range rc.Waypoints {
			parsed, err := route.ParseWaypoints(w)
			if err != nil {
				return nil, err
			}
			pts = append(pts, parsed...)
		}
		return pts, nil
	default:
		from, err := route.ParseCoordinate(rc.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to, err := route.ParseCoordinate(rc.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		return route.Endpoints{From: from, To: to}, nil
	}
}

func initStore(ctx context.Context, cfg *config.Config) (store.Store, func()) {
	if cfg.DB.Path == "" {
		slog.Info("Run history disabled")
		return nil, func() {}
	}
	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		slog.Error("Failed to open run history, continuing without it", "path", cfg.DB.Path, "error", err)
		return nil, func() {}
	}
	st := store.NewSQLiteStore(dbConn)
	if err := maintenance.Run(ctx, st, time.Duration(cfg.DB.Retention)); err != nil {
		slog.Warn("Maintenance tasks failed, continuing", "error", err)
	}
	return st, func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close run history", "error", err)
		}
	}
}

func historyCheck(st store.Store) probe.CheckFunc {
	return func(ctx context.Context) error {
		if st == nil {
			return errors.New("run history unavailable")
		}
		if last, ok := st.GetState(ctx, store.KeyLastRunID); ok {
			slog.Debug("Previous run", "id", last)
		}
		_, err := st.ListRuns(ctx, 1)
		return err
	}
}

func startServer(srv *http.Server) func() {
	slog.Info("Starting status server", "addr", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Status server failed", "error", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Status server shutdown failed", "error", err)
		}
	}
}

func runRecord(rep playback.Report, src route.Source, provider string, pc pace.Config, rt route.Route) *model.RunRecord {
	rec := &model.RunRecord{
		ID:         rep.RunID,
		Source:     src.Describe(),
		Provider:   provider,
		SpeedKmh:   pc.SpeedKmh,
		Waypoints:  rt.Len(),
		DistanceKm: rep.TotalDistanceKm,
		Steps:      rep.TotalSteps,
		State:      string(rep.State),
		Error:      rep.ErrorText(),
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}
	if rt.Len() > 0 {
		b := geo.Bound(rt.Points())
		rec.MinLon, rec.MinLat = b.Min.Lon(), b.Min.Lat()
		rec.MaxLon, rec.MaxLat = b.Max.Lon(), b.Max.Lat()
	}
	return rec
}

func recordRun(st store.Store, rec *model.RunRecord) {
	if st == nil {
		return
	}
	// The run context may be cancelled already; history is written regardless.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := st.SaveRun(ctx, rec); err != nil {
		slog.Error("Failed to save run", "id", rec.ID, "error", err)
		return
	}
	if err := st.SetState(ctx, store.KeyLastRunID, rec.ID); err != nil {
		slog.Warn("Failed to save last run id", "error", err)
	}
}
