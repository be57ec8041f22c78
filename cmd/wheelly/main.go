// Command wheelly wires a physical robot's serial transport to a
// RobotController, a WorldModeller, the sqlite snapshot store, and a
// status/admin HTTP server, mirroring the teacher's main.go wiring
// (controller goroutine, periodic snapshot goroutine, HTTP server
// goroutine, signal.NotifyContext-driven graceful shutdown).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/m-marini/wheelly/internal/config"
	"github.com/m-marini/wheelly/internal/config/store"
	"github.com/m-marini/wheelly/internal/controller"
	"github.com/m-marini/wheelly/internal/httputil"
	"github.com/m-marini/wheelly/internal/robot"
	"github.com/m-marini/wheelly/internal/version"
	"github.com/m-marini/wheelly/internal/worldmodeller"
)

var (
	showVersion      = flag.Bool("version", false, "Print version information and exit")
	port             = flag.String("port", "", "Serial port device (e.g. /dev/ttyUSB0); required")
	baud             = flag.Int("baud", 115200, "Serial baud rate")
	configPath       = flag.String("config", "", "Tuning config JSON path (defaults to config/tuning.defaults.json)")
	dbPath           = flag.String("db", "wheelly.db", "Sqlite snapshot store path")
	listen           = flag.String("listen", ":8080", "HTTP listen address")
	snapshotName     = flag.String("snapshot", "default", "Name under which world model snapshots are saved/restored")
	snapshotInterval = flag.Duration("snapshot-interval", 30*time.Second, "Interval between automatic world model snapshots")
	numSectors       = flag.Int("sectors", 16, "Number of PolarMap sectors")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("wheelly %s (commit %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *port == "" {
		log.Fatal("-port is required")
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}
	if err := tuning.Validate(); err != nil {
		log.Fatalf("invalid tuning config: %v", err)
	}
	spec := tuning.RobotSpec()
	ctrlCfg := tuning.ControllerConfig()

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open snapshot store: %v", err)
	}
	defer db.Close()

	modeller := worldmodeller.New(spec, worldmodeller.Config{NumSectors: *numSectors})
	if wm, ok, err := db.LoadLatestWorldModel(*snapshotName); err != nil {
		log.Printf("failed to load snapshot %q: %v", *snapshotName, err)
	} else if ok {
		modeller.Restore(wm)
		log.Printf("restored world model %q from snapshot store", *snapshotName)
	}

	transport, err := robot.DialSerial(*port, *baud)
	if err != nil {
		log.Fatalf("failed to open serial port %q: %v", *port, err)
	}
	defer transport.Close()
	source := robot.NewPhysicalSource(transport, spec)

	var mu sync.Mutex
	var latest robot.Status

	ctrl := controller.NewController(source, ctrlCfg, func(status robot.Status) {
		mu.Lock()
		latest = status
		mu.Unlock()
		modeller.Observe(status)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("controller terminated: %v", err)
		}
		log.Print("controller routine stopped")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSnapshotter(ctx, db, modeller, *snapshotName, *snapshotInterval)
		log.Print("snapshotter routine stopped")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runHTTPServer(ctx, *listen, ctrl, db, &mu, &latest)
		log.Print("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Print("graceful shutdown complete")
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.MustLoadDefaultTuning(), nil
	}
	return config.LoadTuningConfig(path)
}

// runSnapshotter periodically persists the modeller's current state
// under name, and once more on shutdown.
func runSnapshotter(ctx context.Context, db *store.Store, modeller *worldmodeller.WorldModeller, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	save := func() {
		wm := modeller.Snapshot()
		if _, err := db.SaveWorldModel(name, time.Now().UnixMilli(), wm); err != nil {
			log.Printf("failed to save snapshot %q: %v", name, err)
		}
	}

	for {
		select {
		case <-ticker.C:
			save()
		case <-ctx.Done():
			save()
			return
		}
	}
}

func runHTTPServer(ctx context.Context, addr string, ctrl *controller.Controller, db *store.Store, mu *sync.Mutex, latest *robot.Status) {
	mux := http.NewServeMux()

	db.AttachAdminRoutes(mux)

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		status := *latest
		mu.Unlock()
		httputil.WriteJSONOK(w, status)
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, map[string]string{"state": ctrl.State().String()})
	})

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
