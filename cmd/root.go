package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/behnamazizi/localnet-bookmarks/internal/config"
)

var cfgFile string
var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:   "localnet-bookmarks",
	Short: "Build a single-page bookmark list for your local network",
	Long: `localnet-bookmarks reads a JSON list of sites, packs their PNG icons into
one sprite, and writes a single self-contained HTML page listing the sites
grouped by category.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"list":     "listFile",
	"icons":    "iconsDir",
	"intro":    "introFile",
	"template": "template",
	"out":      "output",
	"lang":     "language",
	"title":    "siteTitle",
	"quiet":    "quiet",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.String("list", "", "site list file, JSON or YAML (default src/list.json)")
	flags.String("icons", "", "directory of <hostname>.png icons (default src/icons)")
	flags.String("intro", "", "Markdown intro file (default src/intro.md)")
	flags.String("template", "", "page template overriding the built-in one")
	flags.String("out", "", "output HTML file (default dist/index.html)")
	flags.String("lang", "", "BCP 47 language used for sorting (default en)")
	flags.String("title", "", "page title")
	flags.BoolP("quiet", "q", false, "only print errors and the final summary")
}

func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	for key, value := range config.Defaults() {
		v.SetDefault(key, value)
	}

	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("LNB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	baseDir := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		baseDir = filepath.Dir(v.ConfigFileUsed())
		if !v.GetBool("quiet") {
			fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", v.ConfigFileUsed())
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := absFlagPaths(cmd, &cfg); err != nil {
		return err
	}
	cfg.BaseDir = baseDir
	cfg.ResolvePaths()

	appConfig = cfg
	return nil
}

// absFlagPaths anchors paths given on the command line to the working
// directory; only paths from the config file are relative to that file.
func absFlagPaths(cmd *cobra.Command, cfg *config.Config) error {
	paths := map[string]*string{
		"list":     &cfg.ListFile,
		"icons":    &cfg.IconsDir,
		"intro":    &cfg.IntroFile,
		"template": &cfg.Template,
		"out":      &cfg.Output,
	}
	for name, p := range paths {
		if !cmd.Flags().Changed(name) || *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolving --%s %s: %w", name, *p, err)
		}
		*p = abs
	}
	return nil
}
