package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"quartz-skins/internal/skinerr"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "QUARTZ"

type RootConfig struct {
	ConfigFile              string
	LogLevel                string
	Mods                    []string
	OverrideDir             string
	Context                 string
	IgnoreMissingComponents bool
}

func Execute() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg(errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "quartz",
		Short:         "Live UI skin engine: discover, validate and apply skins",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.Logger.WithContext(ctx))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringSliceVar(&cfg.Mods, "mods", nil, "Mod directories to search for skins")
	flags.StringVar(&cfg.OverrideDir, "override-dir", "", "Directory with per-context override modules")
	flags.StringVar(&cfg.Context, "context", "MainMenu", "Context class (MainMenu, InGame, MapEditor, AssetEditor)")
	flags.BoolVar(&cfg.IgnoreMissingComponents, "ignore-missing-components", false, "Skip rules whose widget does not exist")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("mods", flags.Lookup("mods"))
	_ = viper.BindPFlag("override_dir", flags.Lookup("override-dir"))
	_ = viper.BindPFlag("context", flags.Lookup("context"))
	_ = viper.BindPFlag("ignore_missing_components", flags.Lookup("ignore-missing-components"))

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newApplyCommand())
	cmd.AddCommand(newWatchCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetDefault("max_atlas_sprites", 256)
	viper.SetDefault("max_atlas_size", 2048)

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("quartz")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/quartz")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	var skinErr *skinerr.Error
	if errors.As(err, &skinErr) {
		code = errbuilder.CodeOf(skinErr.Unwrap())
	}
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var skinErr *skinerr.Error
	if errors.As(err, &skinErr) {
		return skinErr.Error()
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
