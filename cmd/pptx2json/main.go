// Command pptx2json converts .pptx presentations into resolved JSON slide
// descriptions, either one file at a time or as an HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/VantageDataChat/pptxjson"
)

// app carries the state shared by the subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "pptx2json",
		Short:         "Convert PowerPoint presentations to resolved JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./pptx2json.yaml or $HOME/pptx2json.yaml)")
	flags.Int("concurrency", 1, "slides converted in parallel")
	flags.String("render-mode", "html", "no-fill reporting: html or svg")
	flags.Bool("layout-elements", true, "include layout and master decorations")
	flags.Int("part-cache-size", 128, "parsed XML parts kept in memory")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	mustBind(a.v, flags, map[string]string{
		"concurrency":     "concurrency",
		"render_mode":     "render-mode",
		"layout_elements": "layout-elements",
		"part_cache_size": "part-cache-size",
		"log.level":       "log-level",
		"log.format":      "log-format",
	})

	root.AddCommand(
		newConvertCommand(a),
		newServeCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

// bindFlags binds each viper key to the flag of set with the given name.
func bindFlags(v *viper.Viper, set *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, set.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind %s to --%s: %w", key, name, err)
		}
	}
	return nil
}

// mustBind is bindFlags for command construction, where a failure is a bug.
func mustBind(v *viper.Viper, set *pflag.FlagSet, keys map[string]string) {
	if err := bindFlags(v, set, keys); err != nil {
		panic(err)
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	})
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pptx2json %s\n", pptxjson.Version)
		},
	}
}
