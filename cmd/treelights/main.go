package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coreman2200/funtimes-treelights/internal/app"
	"github.com/coreman2200/funtimes-treelights/internal/config"
	"github.com/coreman2200/funtimes-treelights/internal/render/scenes"
	"github.com/coreman2200/funtimes-treelights/internal/render/sprites"
)

type flags struct {
	configPath string
	master     bool
	cfg        config.Config
}

var opts = flags{cfg: *config.Default()}

var rootCmd = &cobra.Command{
	Use:   "treelights",
	Short: "Animated APA102 lights for the tree",
	Long: `treelights renders animated scenes onto an APA102 strip wound around a
tree and takes remote commands over HTTP and websockets.`,
	SilenceUsage: true,
	RunE:         runLights,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lights (default)",
	RunE:  runLights,
}

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List scenes and modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		cat, err := scenes.New(cfg.Scripts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range cat.Scenes() {
			fmt.Fprintln(out, s)
		}
		for _, m := range cat.Modes() {
			ss, _ := cat.Mode(m)
			fmt.Fprintf(out, "mode %s: %v\n", m, ss)
		}
		return nil
	},
}

var spritesCmd = &cobra.Command{
	Use:   "sprites",
	Short: "List sprites",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := sprites.NewRegistry()
		for _, name := range reg.List() {
			kind, _ := reg.Kind(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, kind)
		}
		return nil
	},
}

func init() {
	c := &opts.cfg
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config.yaml")
	pf.StringVar(&c.Driver, "driver", c.Driver, "output: spi | sim | null")
	pf.StringVar(&c.ColorOrder, "color", c.ColorOrder, "wire colour order, e.g. BGR")
	pf.IntVar(&c.FPS, "fps", c.FPS, "target frames per second")
	pf.Float64Var(&c.Speed, "speed", c.Speed, "animation speed multiplier")
	pf.BoolVar(&c.NoSync, "no-sync", c.NoSync, "do not sleep to the target frame rate")
	pf.StringVar(&c.Scene, "scene", c.Scene, "start with this scene or mode")
	pf.StringVar(&c.Sprite, "sprite", c.Sprite, "start with a scene of this one sprite")
	pf.Int64Var(&c.Seed, "seed", c.Seed, "random seed, 0 for time based")
	pf.BoolVar(&opts.master, "master", false, "publish frames for followers")
	pf.StringVar(&c.Follow, "follow", c.Follow, "mirror the master at this websocket url")
	pf.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address, empty to disable")
	pf.StringVar(&c.Geometry, "geometry", c.Geometry, "calibration file, empty for the built-in table")
	pf.BoolVar(&c.Warn, "warn", c.Warn, "warn on slow frames")
	pf.BoolVar(&c.PrintFrameRate, "print-frame-rate", c.PrintFrameRate, "log the frame rate every second")
	pf.BoolVar(&c.DebugMessages, "debug-messages", c.DebugMessages, "log every received message")
	pf.StringVar(&c.Encoding.Policy, "policy", c.Encoding.Policy, "brightness policy: fixed | adaptive")
	pf.Float64Var(&c.Encoding.Gamma, "gamma", c.Encoding.Gamma, "gamma exponent")
	pf.IntVar(&c.Encoding.Brightness, "brightness", c.Encoding.Brightness, "global brightness 0..31 (fixed policy)")

	rootCmd.AddCommand(runCmd, scenesCmd, spritesCmd)
}

// loadConfig reads the config file, then lays every flag the user set on
// top of it. A missing file is not an error.
func loadConfig(fl *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if fl.Changed("config") {
			return nil, err
		}
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	set := func(name string, apply func()) {
		if fl.Changed(name) {
			apply()
		}
	}
	f := &opts.cfg
	set("driver", func() { cfg.Driver = f.Driver })
	set("color", func() { cfg.ColorOrder = f.ColorOrder })
	set("fps", func() { cfg.FPS = f.FPS })
	set("speed", func() { cfg.Speed = f.Speed })
	set("no-sync", func() { cfg.NoSync = f.NoSync })
	set("scene", func() { cfg.Scene = f.Scene })
	set("sprite", func() { cfg.Sprite = f.Sprite })
	set("seed", func() { cfg.Seed = f.Seed })
	set("follow", func() { cfg.Follow, cfg.Role = f.Follow, "follower" })
	set("master", func() { cfg.Role = "master" })
	set("addr", func() { cfg.Addr = f.Addr })
	set("geometry", func() { cfg.Geometry = f.Geometry })
	set("warn", func() { cfg.Warn = f.Warn })
	set("print-frame-rate", func() { cfg.PrintFrameRate = f.PrintFrameRate })
	set("debug-messages", func() { cfg.DebugMessages = f.DebugMessages })
	set("policy", func() { cfg.Encoding.Policy = f.Encoding.Policy })
	set("gamma", func() { cfg.Encoding.Gamma = f.Encoding.Gamma })
	set("brightness", func() { cfg.Encoding.Brightness = f.Encoding.Brightness })
	return cfg, nil
}

func runLights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DebugMessages {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	core, err := app.InitCore(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info().Str("role", cfg.Role).Str("scene", core.Conductor.Mgr.Current()).Msg("lights on")
	return core.Run(ctx)
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	gin.SetMode(gin.ReleaseMode)

	if err := rootCmd.Execute(); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			log.Error().Str("field", verr.Field).Msg(verr.Reason)
		} else {
			log.Error().Err(err).Msg("treelights")
		}
		os.Exit(1)
	}
}
