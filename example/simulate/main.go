package main

import (
	"errors"
	"flag"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/portals"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/metrics"
	"github.com/oomph-ac/portals/settings"
	"github.com/oomph-ac/portals/worker"
	"github.com/oomph-ac/portals/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// The following program simulates entities walking through portals between the overworld and the nether,
// and reports how their transfers were resolved.
func main() {
	var (
		path      = flag.String("settings", "portals.toml", "path to the settings file")
		entities  = flag.Int("entities", 10000, "amount of transfers to simulate")
		spread    = flag.Float64("spread", 4096, "maximum distance from the origin entities start at")
		pillars   = flag.Int("pillars", 2000, "amount of stone pillars obstructing portal sites in every dimension")
		workers   = flag.Int("workers", 0, "amount of workers, one per CPU if zero")
		debug     = flag.Bool("debug", false, "log every transfer")
		metricsAt = flag.String("metrics", "", "address to serve prometheus metrics on, disabled if empty")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	conf, err := readSettings(*path, log)
	if err != nil {
		log.Error("unable to read settings", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		panic(err)
	}
	srv, err := portals.New(conf, log, collector)
	if err != nil {
		log.Error("unable to start portal service", "err", err)
		os.Exit(1)
	}

	worlds := make(map[string]*world.World)
	for _, name := range []string{"overworld", "nether"} {
		dim, ok := srv.Dimension(name)
		if !ok {
			log.Error("dimension not configured", "dimension", name)
			os.Exit(1)
		}
		w := world.New(dim, log)
		scatterPillars(w, *pillars, *spread/dim.Scale)
		if err := srv.Attach(w); err != nil {
			panic(err)
		}
		worlds[name] = w
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
	}
	if *metricsAt != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAt, mux); err != nil {
				log.Error("metrics server stopped", "err", err)
			}
		}()
	}

	var resolved, failed atomic.Int64
	pool := worker.New(*workers)
	start := time.Now()
	for i := 0; i < *entities; i++ {
		from, to := "overworld", "nether"
		if i%2 == 1 {
			from, to = to, from
		}
		e := entity.Location{
			Position: mgl64.Vec3{(rand.Float64()*2 - 1) * *spread, 64, (rand.Float64()*2 - 1) * *spread},
			Velocity: mgl64.Vec3{rand.Float64() - 0.5, 0, rand.Float64() - 0.5},
			Yaw:      rand.Float32()*360 - 180,
			Pitch:    rand.Float32()*180 - 90,
		}
		pool.Submit(func() {
			req, err := srv.Request(e, from, to)
			if err != nil {
				panic(err)
			}
			pose, err := srv.Resolve(req)
			if err != nil {
				failed.Add(1)
				return
			}
			resolved.Add(1)
			log.Debug("entity transferred", "from", from, "to", to, "pos", pose.Position, "facing", pose.Location().Direction())
		})
	}
	pool.Wait()
	pool.Close()
	took := time.Since(start)

	built := len(srv.Anchors("overworld")) + len(srv.Anchors("nether"))
	worlds["overworld"].CleanChunks(int32(*spread/64), protocol.ChunkPos{})
	remaining := len(srv.Anchors("overworld")) + len(srv.Anchors("nether"))

	log.Info("simulation finished",
		"resolved", resolved.Load(),
		"failed", failed.Load(),
		"portals", built,
		"invalidated", built-remaining,
		"took", took,
	)
	if *metricsAt != "" || os.Getenv("PPROF_ENABLED") != "" {
		log.Info("serving metrics, press ctrl+c to exit")
		select {}
	}
}

// readSettings loads the settings file at the path passed, creating it with the default settings first if it
// does not exist yet.
func readSettings(path string, log *slog.Logger) (settings.Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := settings.SaveDefault(path); err != nil {
			return settings.Settings{}, err
		}
		log.Info("created default settings", "path", path)
	}
	return settings.Load(path)
}

// scatterPillars places n stone pillars from y 48 to 96 at random positions within spread blocks of the origin of the world.
func scatterPillars(w *world.World, n int, spread float64) {
	for i := 0; i < n; i++ {
		base := cube.Pos{int((rand.Float64()*2 - 1) * spread), 48, int((rand.Float64()*2 - 1) * spread)}
		w.Fill(base, cube.Pos{base[0], 96, base[2]}, block.Stone{})
	}
}
