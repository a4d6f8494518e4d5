package main

import (
	"github.com/milosgajdos/go-identify/config"
	"github.com/spf13/cobra"
)

type rootOpts struct {
	config   string
	logLevel string
	logFile  string
}

type runOpts struct {
	observations     int
	data             string
	generate         bool
	noNoise          bool
	seed             uint64
	theta0           []float64
	results          string
	trajectoryPrefix string
	plotPrefix       string
}

func newRootCmd() *cobra.Command {
	ro := &rootOpts{}

	cmd := &cobra.Command{
		Use:           "paramest",
		Short:         "parameter identification of dynamical systems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&ro.config, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&ro.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	cmd.PersistentFlags().StringVar(&ro.logFile, "log-file", "", "log file path; stderr if empty")

	cmd.AddCommand(newGenerateCmd(ro))
	cmd.AddCommand(newMethodCmd(ro, "run", "generate observations and run all configured methods", nil))
	cmd.AddCommand(newMethodCmd(ro, config.MethodEKF, "identify parameters with extended Kalman filter", []string{config.MethodEKF}))
	cmd.AddCommand(newMethodCmd(ro, config.MethodRMLM, "identify parameters with recursive maximum likelihood method", []string{config.MethodRMLM}))

	return cmd
}

func addRunFlags(cmd *cobra.Command, o *runOpts) {
	cmd.Flags().IntVarP(&o.observations, "observations", "n", 0, "number of generated observations")
	cmd.Flags().StringVarP(&o.data, "data", "d", "", "observation file")
	cmd.Flags().BoolVar(&o.noNoise, "no-noise", false, "generate noiseless observations")
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "measurement noise seed")
}

func newGenerateCmd(ro *rootOpts) *cobra.Command {
	o := &runOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate observations of the configured model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, ro, o)
			if err != nil {
				return err
			}

			return withLogger(cfg, func(a *app) error {
				return a.generate()
			})
		},
	}
	addRunFlags(cmd, o)

	return cmd
}

func newMethodCmd(ro *rootOpts, use, short string, methods []string) *cobra.Command {
	o := &runOpts{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, ro, o)
			if err != nil {
				return err
			}
			if methods != nil {
				cfg.Methods = methods
			}

			return withLogger(cfg, func(a *app) error {
				return a.run(cmd.OutOrStdout())
			})
		},
	}
	addRunFlags(cmd, o)
	cmd.Flags().BoolVar(&o.generate, "generate", true, "generate new observations before identification")
	cmd.Flags().Float64SliceVar(&o.theta0, "theta0", nil, "initial parameter guess")
	cmd.Flags().StringVarP(&o.results, "results", "o", "", "results file; stdout if empty")
	cmd.Flags().StringVar(&o.trajectoryPrefix, "trajectory-prefix", "", "export parameter trajectories to <prefix>_<method>.csv")
	cmd.Flags().StringVar(&o.plotPrefix, "plot-prefix", "", "save parameter plots to <prefix>_<method>_theta<i>.png")

	return cmd
}

// loadConfig loads configuration file if given and applies command line overrides
func loadConfig(cmd *cobra.Command, ro *rootOpts, o *runOpts) (*config.Config, error) {
	cfg := config.Default()
	if ro.config != "" {
		c, err := config.Load(ro.config)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = ro.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.Filename = ro.logFile
	}
	if flags.Changed("observations") {
		cfg.Observations = o.observations
	}
	if flags.Changed("data") {
		cfg.DataFile = o.data
	}
	if flags.Changed("no-noise") {
		cfg.Noise = !o.noNoise
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("generate") {
		cfg.Generate = o.generate
	}
	if flags.Changed("theta0") {
		cfg.Theta0 = o.theta0
	}
	if flags.Changed("results") {
		cfg.Results = o.results
	}
	if flags.Changed("trajectory-prefix") {
		cfg.TrajectoryPrefix = o.trajectoryPrefix
	}
	if flags.Changed("plot-prefix") {
		cfg.PlotPrefix = o.plotPrefix
	}

	if cmd.Name() == "generate" {
		cfg.Generate = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func withLogger(cfg *config.Config, fn func(a *app) error) error {
	a, closer, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	return fn(a)
}
