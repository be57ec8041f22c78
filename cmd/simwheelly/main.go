// Command simwheelly drives a RobotController and WorldModeller against
// an in-process simrobot.Robot instead of physical hardware, for
// development and automated testing of the control core without a
// serial connection.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/m-marini/wheelly/internal/config"
	"github.com/m-marini/wheelly/internal/controller"
	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/httputil"
	"github.com/m-marini/wheelly/internal/robot"
	"github.com/m-marini/wheelly/internal/simrobot"
	"github.com/m-marini/wheelly/internal/version"
	"github.com/m-marini/wheelly/internal/worldmodeller"
)

var (
	showVersion   = flag.Bool("version", false, "Print version information and exit")
	configPath    = flag.String("config", "", "Tuning config JSON path (defaults to config/tuning.defaults.json)")
	obstaclesPath = flag.String("obstacles", "", "Obstacle layout JSON path (defaults to a small built-in room)")
	listen        = flag.String("listen", ":8081", "HTTP listen address")
	numSectors    = flag.Int("sectors", 16, "Number of PolarMap sectors")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("simwheelly %s (commit %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
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

	obstacles, err := loadObstacles(*obstaclesPath)
	if err != nil {
		log.Fatalf("failed to load obstacle layout: %v", err)
	}

	source := simrobot.NewRobot(simrobot.Config{
		Spec:              spec,
		Obstacles:         obstacles,
		InitialPose:       geom.Point{X: 0, Y: 0},
		InitialDirDeg:     0,
		MessageInterval:   100,
		CameraInterval:    200,
		StalemateInterval: 5000,
	})

	modeller := worldmodeller.New(spec, worldmodeller.Config{NumSectors: *numSectors})

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
		runHTTPServer(ctx, *listen, ctrl, &mu, &latest)
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

// defaultObstacles is a small rectangular room with a single pillar,
// enough to exercise the echo/camera/collision model without a config
// file.
func defaultObstacles() simrobot.ObstacleMap {
	return simrobot.ObstacleMap{Obstacles: []simrobot.Obstacle{
		{Label: "wall-n", Center: geom.Point{X: 0, Y: 5}, Radius: 4.9},
		{Label: "wall-s", Center: geom.Point{X: 0, Y: -5}, Radius: 4.9},
		{Label: "wall-e", Center: geom.Point{X: 5, Y: 0}, Radius: 4.9},
		{Label: "wall-w", Center: geom.Point{X: -5, Y: 0}, Radius: 4.9},
		{Label: "pillar", Center: geom.Point{X: 1.5, Y: 1.5}, Radius: 0.3},
	}}
}

func loadObstacles(path string) (simrobot.ObstacleMap, error) {
	if path == "" {
		return defaultObstacles(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return simrobot.ObstacleMap{}, fmt.Errorf("read %q: %w", path, err)
	}
	var m simrobot.ObstacleMap
	if err := json.Unmarshal(data, &m); err != nil {
		return simrobot.ObstacleMap{}, fmt.Errorf("parse %q: %w", path, err)
	}
	return m, nil
}

func runHTTPServer(ctx context.Context, addr string, ctrl *controller.Controller, mu *sync.Mutex, latest *robot.Status) {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		status := *latest
		mu.Unlock()
		httputil.WriteJSONOK(w, status)
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, map[string]string{"state": ctrl.State().String()})
	})

	mux.HandleFunc("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DirDeg int     `json:"dirDeg"`
			Speed  float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("bad request: %v", err))
			return
		}
		id := ctrl.Move(req.DirDeg, req.Speed)
		httputil.WriteJSONOK(w, map[string]string{"commandId": id.String()})
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
