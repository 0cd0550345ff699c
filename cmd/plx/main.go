package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plx-project/plx/internal/config"
	"github.com/plx-project/plx/internal/log"
)

var (
	userConfigPath string // /default/config/path/plx on given OS
	configPath     string // actual config file used (if loaded)
	cfg            config.Config
	logOut         io.Closer

	flagConfigFilePath string // value of --config flag
)

// errChecksFailed makes plx check exit with 1 without logging an error.
var errChecksFailed = errors.New("some checks failed")

func init() {
	d, err := config.UserDir()
	if err != nil {
		slog.Warn("user config directory not available", "error", err)
		return
	}
	userConfigPath = d
}

func main() {
	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is plx.yaml in the project directory or in "+userConfigPath)
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose logging")
	rootCmd.PersistentFlags().String("log", config.LogAuto, "log destination: auto, stderr, stdout, discard or a file")
	rootCmd.PersistentFlags().String("build-dir", "", "directory for compiled exercises, relative to the project")

	trainCmd.Flags().String("editor", "", "editor command, default is $VISUAL or $EDITOR")
	trainCmd.Flags().Bool("open-editor", true, "open the exercise in the editor")
	checkCmd.Flags().IntP("jobs", "j", 0, "number of exercises checked in parallel")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse the config, setup logging
	rootCmd.PersistentPreRunE = initPlx
	rootCmd.PersistentPostRunE = closeLog

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			slog.Error("plx failed", "err", err)
			fmt.Fprintln(os.Stderr, "plx:", err)
		}
		_ = closeLog(nil, nil)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "plx",
	Short:        "Practice C and C++ exercises with instant feedback",
	SilenceUsage: true,
}

var trainCmd = &cobra.Command{
	Use:   "train [dir]",
	Short: "train opens the exercises of a project in the terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doTrain,
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "check compiles every exercise found in dir and runs its checks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doCheck,
}

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "list prints the exercises of a project and their progress",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doList,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "config prints the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := cfg.YAML()
		if err != nil {
			return err
		}
		if configPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", configPath)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provide version of a plx",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("plx: version info not available")
			return
		}

		if configPath != "" {
			fmt.Printf("config: %s\n", configPath)
		}
		fmt.Printf("plx:    %s\n", info.Main.Version)
		fmt.Printf("go:     %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit: %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:   %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:  %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func initPlx(cmd *cobra.Command, args []string) error {
	path := flagConfigFilePath
	if envConfig, ok := os.LookupEnv("PLXCONFIG"); ok {
		path = envConfig
	}

	dir := projectDir(args)
	dirs := []string{dir}
	if userConfigPath != "" {
		dirs = append(dirs, userConfigPath)
	}
	v, err := config.New(path, cmd.Flags(), dirs...)
	if err != nil {
		return err
	}
	cfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	configPath = v.ConfigFileUsed()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	out, err := log.Open(cfg.LogPath(abs, cmd == trainCmd))
	if err != nil {
		return err
	}
	logOut = out
	slog.SetDefault(log.New(out, cfg.Verbose))

	slog.Debug("plx run", "cmd", cmd.Name(), "configPath", configPath)
	slog.Debug("plx run", "config", cfg)
	return nil
}

func closeLog(*cobra.Command, []string) error {
	if logOut == nil {
		return nil
	}
	err := logOut.Close()
	logOut = nil
	return err
}
