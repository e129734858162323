package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/slotswap/slotswap/pkg/cluster"
	"github.com/slotswap/slotswap/pkg/configs"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
	"github.com/slotswap/slotswap/pkg/kubeutil"
	"github.com/slotswap/slotswap/pkg/notify"
	"github.com/slotswap/slotswap/pkg/orchestrator"
	"github.com/slotswap/slotswap/pkg/probe"
	"github.com/slotswap/slotswap/pkg/registry"
)

const defaultConfigPath = "/etc/slotswap/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "release",
	Short: "Blue-green releases for one Kubernetes application",
	Long: `release deploys an artifact to the idle slot of a blue-green environment,
validates it, switches traffic over and parks the previous slot.

Exit codes tell CI what happened:

  0  success (including degraded success)
  1  failure before any traffic moved
  2  health validation failed (before or after the switch)
  3  rollback failed; manual intervention required
  4  cancelled`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $SLOTSWAP_CONFIG, then "+defaultConfigPath+")")
	rootCmd.PersistentFlags().String("loglevel", "warn", "log level. debug|info|warn|error|off")
	rootCmd.PersistentFlags().String("kubeconfig", "", "kubeconfig file path (default: $KUBECONFIG, ~/.kube/config or in-cluster)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitCode maps the error taxonomy onto the exit codes promised in the help
// text. Degraded successes never reach here; the subcommands swallow
// relerr.ErrCleanupFailure after warning about it.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case relerr.AsValidationFailed(err), relerr.AsPostSwitchFailure(err):
		return 2
	case relerr.AsRollbackFailed(err):
		return 3
	case errors.Is(err, relerr.ErrCancelled), errors.Is(err, context.Canceled):
		return 4
	default:
		return 1
	}
}

// newOrchestrator wires the cluster collaborators for one CLI invocation.
func newOrchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, *configs.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("SLOTSWAP_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	conf, err := configs.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read configuration %s: %w", path, err)
	}

	loglevel, _ := cmd.Flags().GetString("loglevel")
	logger := newLogger(loglevel)

	kubeconfig, _ := cmd.Flags().GetString("kubeconfig")
	searchPath := []string{}
	if kubeconfig != "" {
		searchPath = append(searchPath, kubeconfig)
	}
	clientset, err := kubeutil.Connect(searchPath...)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to the cluster: %w", err)
	}
	client := cluster.WrapClientset(clientset)

	gateway := cluster.NewGateway(
		client,
		conf.App.Name, conf.App.Namespace,
		cluster.WorkloadTemplate{
			Container:  conf.Workload.Container,
			Port:       conf.Workload.Port,
			Replicas:   conf.Workload.Replicas,
			HealthPath: conf.Workload.HealthPath,
		},
		conf.Retry.Policy(), conf.Rollout.PollInterval.Duration(),
		logger.With().Str("component", "cluster").Logger(),
	)
	reg := registry.New(
		client, conf.App.Name, conf.App.Namespace, conf.Retry.Policy(),
		logger.With().Str("component", "registry").Logger(),
	)
	prober := probe.New(
		conf.Probe.ExpectedStatus, conf.Probe.Timeout.Duration(),
		logger.With().Str("component", "probe").Logger(),
	)

	var notifier notify.Notifier
	if 0 < len(conf.Notify.Webhooks) {
		notifier = notify.NewWeb(conf.Notify.Webhooks)
	}

	orc := orchestrator.New(
		reg, gateway, prober, notifier,
		orchestrator.Params{
			RolloutTimeout: conf.Rollout.Timeout.Duration(),
			ProbeAttempts:  conf.Probe.Attempts,
			ProbeInterval:  conf.Probe.Interval.Duration(),
			TargetReplicas: conf.Workload.Replicas,
			SlotEndpoint: func(slot domain.SlotName) string {
				return conf.SlotHealthURL(string(slot))
			},
			PublicEndpoint: conf.Probe.PublicURL,
		},
		logger.With().Str("component", "orchestrator").Logger(),
	)
	return orc, conf, nil
}

func newLogger(level string) zerolog.Logger {
	lv := zerolog.WarnLevel
	switch level {
	case "debug":
		lv = zerolog.DebugLevel
	case "info":
		lv = zerolog.InfoLevel
	case "warn", "":
		lv = zerolog.WarnLevel
	case "error":
		lv = zerolog.ErrorLevel
	case "off":
		lv = zerolog.Disabled
	}
	return zerolog.New(os.Stderr).Level(lv).With().Timestamp().Logger()
}

// printReport writes the report JSON to w; CI archives it as the run record.
func printReport(w io.Writer, report *domain.ReleaseReport) {
	if report == nil {
		return
	}
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot render the release report: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(body))
}

// failingPhase finds the phase a failed run broke at.
func failingPhase(report *domain.ReleaseReport) (domain.PhaseResult, bool) {
	if report == nil {
		return domain.PhaseResult{}, false
	}
	for i := len(report.Phases) - 1; 0 <= i; i-- {
		if report.Phases[i].Outcome == domain.OutcomeFailure {
			return report.Phases[i], true
		}
	}
	return domain.PhaseResult{}, false
}
