package cbmrun

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds cbmrun's configuration: a *viper.Viper embedded for
// nested config-file/flag/env resolution, plus the cobra.Command tree
// built around it.
type Cfg struct {
	*viper.Viper

	Root, runCmd, spinupCmd, validateCmd *cobra.Command

	Log logrus.FieldLogger
}

// NewCfg builds the command tree and registers every pflag-bound
// option against the commands that use it.
func NewCfg() *Cfg {
	cfg := &Cfg{Viper: viper.New(), Log: logrus.StandardLogger()}
	cfg.SetEnvPrefix("CBMRUN")
	cfg.AutomaticEnv()

	cfg.Root = &cobra.Command{
		Use:   "cbmrun",
		Short: "Run a forest carbon pool/flux simulation.",
		Long: `cbmrun drives a population of stands through spinup and/or annual
timesteps using a TOML parameter bundle (pools, flux indicators, growth/
turnover/decay/disturbance parameter tables, and the stand inventory).

Configuration can be supplied with --parameters, overridden by flags, or
set through environment variables in the form CBMRUN_VAR.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}

	cfg.spinupCmd = &cobra.Command{
		Use:               "spinup",
		Short:             "Drive every stand to spinup steady state.",
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpinup(cfg)
		},
	}

	cfg.runCmd = &cobra.Command{
		Use:               "run",
		Short:             "Advance every stand by one or more annual timesteps.",
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cfg)
		},
	}

	cfg.validateCmd = &cobra.Command{
		Use:               "validate",
		Short:             "Load a parameter bundle and pretty-print its resolved stand states.",
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cfg)
		},
	}

	cfg.Root.AddCommand(cfg.spinupCmd, cfg.runCmd, cfg.validateCmd)

	options := []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name:     "config",
			usage:    "config is the path to a configuration file (an alternate way of supplying the other flags below).",
			flagsets: []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:     "parameters",
			usage:    "parameters is the path to the TOML parameter bundle.",
			flagsets: []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:     "disturbance-assoc",
			usage:    "disturbance-assoc is an optional path to a YAML disturbance-matrix association file, appended to the bundle's own [[disturbance]] rows.",
			flagsets: []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "years",
			usage:      "years is the number of annual timesteps to run.",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "log-every",
			usage:      "log-every logs step progress every Nth year (0 logs every year).",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "max-ticks",
			usage:      "max-ticks bounds the number of simulated spinup years (one tick each, for the whole population); a stand that has not finished by then is reported non-converged (0 uses the bundle's limit).",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.spinupCmd.Flags()},
		},
	}
	for _, option := range options {
		for _, set := range option.flagsets {
			switch v := option.defaultVal.(type) {
			case nil:
				set.String(option.name, "", option.usage)
			case string:
				set.String(option.name, v, option.usage)
			case int:
				set.Int(option.name, v, option.usage)
			case bool:
				set.Bool(option.name, v, option.usage)
			default:
				panic(fmt.Errorf("cbmrun: invalid default value type %T for option %q", v, option.name))
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	return cfg
}

// setConfig reads in the configuration file named by --config, if any.
func setConfig(cfg *Cfg) error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cbmrun: problem reading configuration file: %w", err)
		}
	}
	return nil
}
