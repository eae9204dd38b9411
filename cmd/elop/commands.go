package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/elop"
	"github.com/viant/elop/model"
	"github.com/viant/elop/service/meta"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "elop.yaml"

// options holds the persistent flags shared by every subcommand.
type options struct {
	configFile   string
	baseURL      string
	icd          string
	schedule     string
	stateMachine string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "elop",
		Short: "Resolve signals, schedule slots and task assignments of an ELOP environment",
		Long: `elop answers lookups across the interface control document (ICD), the cyclic
task schedule and the state machine of an ELOP environment.

Sources come from the project file (--config, $ELOP_CONFIG or ./elop.yaml)
and can be overridden with --icd, --schedule and --ssm.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "project file (default $ELOP_CONFIG or ./elop.yaml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "location relative sources are resolved against")
	flags.StringVar(&opts.icd, "icd", "", "interface control document (CSV)")
	flags.StringVar(&opts.schedule, "schedule", "", "schedule document (YAML)")
	flags.StringVar(&opts.stateMachine, "ssm", "", "state machine document (YAML)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newSignalCmd(opts),
		newComponentCmd(opts),
		newScheduleCmd(opts),
		newTaskCmd(opts),
		newShowCmd(opts),
	)
	return rootCmd
}

func newSignalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "signal [name]",
		Short: "Print the ICD row of a signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.environment(cmd.Context())
			if err != nil {
				return err
			}
			signal, ok, err := env.Signal(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signal %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", signal.Name, signal.Component, signal.Type)
			return nil
		},
	}
}

func newComponentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "component [signal]",
		Short: "Print the software component owning a signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.environment(cmd.Context())
			if err != nil {
				return err
			}
			component, ok, err := env.ComponentForSignal(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signal %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), component)
			return nil
		},
	}
}

func newScheduleCmd(opts *options) *cobra.Command {
	var startTime, startPos int
	cmd := &cobra.Command{
		Use:   "schedule [task]",
		Short: "Print the next slot time and queue index of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.environment(cmd.Context())
			if err != nil {
				return err
			}
			at, ok, err := env.TaskScheduling(args[0], startTime, startPos)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("task %q not scheduled at or after %d", args[0], startTime)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\n", at.Time, at.Index)
			return nil
		},
	}
	cmd.Flags().IntVar(&startTime, "start", 0, "start time")
	cmd.Flags().IntVar(&startPos, "pos", 0, "start queue position")
	return cmd
}

func newTaskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "task [state] [component]",
		Short: "Print the task running a component in a state and its position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.environment(cmd.Context())
			if err != nil {
				return err
			}
			assignment, ok, err := env.Task(args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("component %q not assigned in state %q", args[1], args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", assignment.Task, assignment.Index)
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "show [icd|schedule|ssm]",
		Short:     "Dump a loaded table as YAML",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"icd", "schedule", "ssm"},
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.environment(cmd.Context())
			if err != nil {
				return err
			}
			var table interface{}
			switch strings.ToLower(args[0]) {
			case "icd":
				table = env.Signals()
			case "schedule":
				table = env.Schedule()
			case "ssm":
				table = env.StateMachine()
			default:
				return fmt.Errorf("unknown table %q, expected icd, schedule or ssm", args[0])
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(table); err != nil {
				return err
			}
			return encoder.Close()
		},
	}
}

// config resolves the project file, then applies flag overrides.
func (o *options) config(ctx context.Context) (*elop.Config, error) {
	location := o.configFile
	if location == "" {
		location = os.Getenv("ELOP_CONFIG")
	}
	explicit := location != ""
	if !explicit {
		location = defaultConfigFile
	}
	cfg := elop.DefaultConfig()
	exists, err := meta.New(afs.New(), "").Exists(ctx, location)
	if err != nil {
		return nil, err
	}
	if exists {
		if cfg, err = elop.LoadConfig(ctx, location); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, fmt.Errorf("%w: %s", model.ErrNotFound, location)
	}
	if o.baseURL != "" {
		cfg.Sources.BaseURL = o.baseURL
	}
	if o.icd != "" {
		cfg.Sources.ICD = o.icd
	}
	if o.schedule != "" {
		cfg.Sources.Schedule = o.schedule
	}
	if o.stateMachine != "" {
		cfg.Sources.StateMachine = o.stateMachine
	}
	return cfg, nil
}

func (o *options) environment(ctx context.Context) (*model.Environment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := o.config(ctx)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	srv, err := elop.NewFromConfig(cfg, elop.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return srv.LoadSources(ctx, cfg.Sources)
}
