package cli

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"quartz-skins/internal/app"
	"quartz-skins/internal/shared"
	"quartz-skins/internal/types"
)

// loadAppConfig reads the engine settings from viper. Flags bound on the
// root command have already been merged in.
func loadAppConfig() (app.Config, error) {
	class, err := parseContext(viper.GetString("context"))
	if err != nil {
		return app.Config{}, err
	}
	return app.Config{
		ModDirs:                 shared.CleanPaths(viper.GetStringSlice("mods")),
		OverrideDir:             shared.ExpandHome(viper.GetString("override_dir")),
		AutoReload:              viper.GetBool("auto_reload"),
		ApplyOnStartup:          viper.GetBool("apply_on_startup"),
		SelectedSkin:            shared.ExpandHome(viper.GetString("selected_skin")),
		IgnoreMissingComponents: viper.GetBool("ignore_missing_components"),
		MaxAtlasSprites:         viper.GetInt("max_atlas_sprites"),
		MaxAtlasSize:            viper.GetInt("max_atlas_size"),
		ScreenWidth:             viper.GetInt("screen_width"),
		ScreenHeight:            viper.GetInt("screen_height"),
		Context:                 class,
	}, nil
}

func newAppService() (*app.Service, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	return app.NewService(cfg), nil
}

func parseContext(value string) (types.ContextClass, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return types.ContextMainMenu, nil
	}
	class, ok := types.ParseContextClass(value)
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown context class: " + value)
	}
	return class, nil
}

func parseContexts(values []string) ([]types.ContextClass, error) {
	var classes []types.ContextClass
	for _, value := range values {
		class, err := parseContext(value)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if configured := viper.GetString(key); configured != "" {
		return configured
	}
	return value
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
