package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Mandelbrottt/Yr2-Engine/internal/asset"
	"github.com/Mandelbrottt/Yr2-Engine/internal/config"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/event"
	"github.com/Mandelbrottt/Yr2-Engine/internal/core/scene"
	"github.com/Mandelbrottt/Yr2-Engine/internal/data"
	"github.com/Mandelbrottt/Yr2-Engine/internal/render"
	"github.com/Mandelbrottt/Yr2-Engine/internal/scripting"
	"github.com/Mandelbrottt/Yr2-Engine/internal/system"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Sandbox ────────────────────────────────────────────────────────

// summaryInterval is how often, in frames, the debug summaries are emitted.
const summaryInterval = 60

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Assets, data tables and scripts
	printSection("data")
	lib := asset.NewLibrary()
	registerBuiltinAssets(lib)
	printStat("meshes", lib.Meshes.Len())
	printStat("materials", lib.Materials.Len())

	bodies, err := data.LoadBodyTable(filepath.Join(cfg.Data.YAMLDir, "body_list.yaml"))
	if err != nil {
		return fmt.Errorf("load body table: %w", err)
	}
	printStat("body templates", bodies.Count())

	spawns, err := data.LoadSpawnList(filepath.Join(cfg.Data.YAMLDir, "spawn_list.yaml"))
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}

	lua, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()

	// 4. Scene and systems
	sc := scene.New(cfg.Engine.Name, log)
	defer sc.Close()

	spawner := &data.Spawner{World: sc.World(), Bodies: bodies, Assets: lib}
	ids, err := spawner.Spawn(spawns)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	printStat("entities spawned", len(ids))
	fmt.Println()

	recorder := render.NewRecorder(log)
	physics := system.NewPhysicsSystem(cfg.Physics, log)
	simulation := scene.NewLayer("simulation",
		system.NewScriptSystem(lua, log),
		physics,
	)
	presentation := scene.NewLayer("presentation", system.NewRenderSystem(recorder, log))
	if err := sc.PushLayer(simulation); err != nil {
		return err
	}
	if err := sc.PushLayer(presentation); err != nil {
		return err
	}
	// Overlays sit above every layer, so destruction is always the last
	// thing in a frame.
	if err := sc.PushOverlay(scene.NewLayer("frame end", system.NewCleanupSystem(log))); err != nil {
		return err
	}
	sc.Inject(event.WindowResized{Width: 1280, Height: 720})

	// 5. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	frame := time.Duration(float64(time.Second) / cfg.Engine.FrameRate)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("frame loop started (frame: %s)", frame))
	fmt.Println()

	frames := 0
	for {
		select {
		case <-ticker.C:
			sc.Update(frame)
			frames++
			if frames%summaryInterval == 0 {
				sc.GuiRender(frame)
				log.Info("frame summary",
					zap.Int("frame", frames),
					zap.Int("entities", sc.World().Len()),
					zap.Int("bodies", physics.BodyCount()),
					zap.Int("draw_calls", len(recorder.LastFrame())),
				)
			}
			if cfg.Engine.MaxFrames > 0 && frames >= cfg.Engine.MaxFrames {
				log.Info("frame budget reached", zap.Int("frames", frames))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()), zap.Int("frames", frames))
			return nil
		}
	}
}

// registerBuiltinAssets caches the meshes and materials the shipped body
// templates reference. The sandbox has no asset importer.
func registerBuiltinAssets(lib *asset.Library) {
	lit := lib.Shaders.Cache(&asset.Shader{Alias: "lit"}, "lit")
	flat := lib.Shaders.Cache(&asset.Shader{Alias: "flat"}, "flat")

	lib.Meshes.Cache(&asset.Mesh{
		Alias: "cube",
		Vertices: []mgl32.Vec3{
			{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
			{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
		},
	}, "cube")
	lib.Meshes.Cache(&asset.Mesh{
		Alias: "sphere",
		Vertices: []mgl32.Vec3{
			{0.5, 0, 0}, {-0.5, 0, 0}, {0, 0.5, 0}, {0, -0.5, 0}, {0, 0, 0.5}, {0, 0, -0.5},
		},
	}, "sphere")

	lib.Materials.Cache(&asset.Material{Alias: "stone", Shader: lit, Albedo: mgl32.Vec3{0.5, 0.5, 0.5}}, "stone")
	lib.Materials.Cache(&asset.Material{Alias: "wood", Shader: lit, Albedo: mgl32.Vec3{0.6, 0.4, 0.2}}, "wood")
	lib.Materials.Cache(&asset.Material{Alias: "paint", Shader: flat, Albedo: mgl32.Vec3{0.9, 0.1, 0.1}}, "paint")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
