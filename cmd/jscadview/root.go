package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/jscad-view/engine"
	"github.com/Carmen-Shannon/jscad-view/engine/config"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
	"github.com/spf13/cobra"
)

// flags holds the command line overrides of the settings file.
type flags struct {
	configPath string
	terminal   bool
	watch      bool
	storePath  string
	profile    bool
	logLevel   string
	logFile    string
	msaa       int
	uncapped   bool
	software   bool
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "jscadview <payload.json>",
		Short: "Interactive viewer for JSCAD geometry payloads",
		Long: `jscadview renders the solids of a JSCAD geometry payload with an orbit camera.

Drag to rotate, shift-drag or right-drag to pan, scroll to zoom.
F fits the view to the geometry, R reloads the payload, Esc quits.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg, f.logFile, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", defaultConfigPath(), "settings file")
	cmd.Flags().BoolVarP(&f.terminal, "terminal", "t", false, "draw inside the terminal")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", true, "reload the payload when the file changes")
	cmd.Flags().StringVar(&f.storePath, "store", "", "camera store file (empty keeps the camera in memory)")
	cmd.Flags().BoolVar(&f.profile, "profile", false, "log frame statistics")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write logs to a file instead of stderr")
	cmd.Flags().IntVar(&f.msaa, "msaa", 0, "MSAA sample count, 1 or 4")
	cmd.Flags().BoolVar(&f.uncapped, "uncapped", false, "present without waiting for vsync")
	cmd.Flags().BoolVar(&f.software, "software", false, "force the software GPU adapter")

	cmd.AddCommand(newConfigCommand())
	return cmd
}

func newConfigCommand() *cobra.Command {
	var write string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the default settings, or write them to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if write != "" {
				if err := cfg.Save(write); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", write)
				return nil
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "write the defaults to this file")
	return cmd
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "jscadview.toml"
	}
	return filepath.Join(dir, "jscad-view", "config.toml")
}

// loadConfig reads the settings file and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("terminal") {
		cfg.Window.Terminal = f.terminal
	}
	if changed("watch") {
		cfg.Viewer.Watch = f.watch
	}
	if changed("store") {
		cfg.Viewer.StorePath = f.storePath
	}
	if changed("profile") {
		cfg.Viewer.Profiling = f.profile
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("msaa") {
		cfg.Renderer.MSAA = f.msaa
	}
	if changed("uncapped") && f.uncapped {
		cfg.Renderer.PresentMode = config.PresentUncapped
	}
	if changed("software") {
		cfg.Renderer.ForceSoftware = f.software
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config, logFile, payloadPath string) error {
	logOut, closeLog, err := logDestination(cfg, logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := cfg.Log.NewLogger(logOut)

	var s store.Store
	if cfg.Viewer.StorePath != "" {
		s, err = store.NewTOMLFile(cfg.Viewer.StorePath)
		if err != nil {
			return err
		}
	} else {
		s = store.NewMemory()
	}

	eng, err := engine.NewEngine(
		engine.WithLogger(logger),
		engine.WithConfig(cfg),
		engine.WithStore(s),
	)
	if err != nil {
		return err
	}
	if err := eng.Load(payloadPath); err != nil {
		eng.Quit()
		return errors.Join(err, eng.Run())
	}

	logger.Info("viewer started", "payload", payloadPath, "terminal", cfg.Window.Terminal)
	return eng.Run()
}

// logDestination keeps logs off the screen in terminal mode unless a log file is given.
func logDestination(cfg config.Config, logFile string) (io.Writer, func(), error) {
	if logFile != "" {
		fh, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return fh, func() { fh.Close() }, nil
	}
	if cfg.Window.Terminal {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}
