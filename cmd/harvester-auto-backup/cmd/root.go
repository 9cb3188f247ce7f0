package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// so that running against managed clusters just works.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/jaevans/harvester-auto-backup/internal/cluster"
	"github.com/jaevans/harvester-auto-backup/internal/config"
	"github.com/jaevans/harvester-auto-backup/internal/logging"
	"github.com/jaevans/harvester-auto-backup/internal/metrics"
	"github.com/jaevans/harvester-auto-backup/internal/orchestrator"
)

var rootCmdFlags struct {
	configFile  string
	kubeconfig  string
	label       string
	namespace   string
	verbose     bool
	dryRun      bool
	metricsAddr string
}

var rootCmd = &cobra.Command{
	Use:   "harvester-auto-backup",
	Short: "Back up labeled VirtualMachines and prune their backup history",
	Long: `Back up labeled VirtualMachines and prune their backup history.

Every run discovers VirtualMachines carrying the selector label with value
"true", creates a VirtualMachineBackup for each, and prunes older backups
under a tiered retention policy: everything is kept inside the weekly
boundary, one backup per ISO week survives up to the monthly boundary, one
per calendar month survives up to the delete boundary, and anything older is
removed. The tool runs once and exits; drive it from a CronJob or similar.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		log := logging.New(cfg.Verbose)
		ctrllog.SetLogger(log)
		klog.SetLogger(log.WithName("klog"))

		if err := cfg.Validate(time.Now().UTC()); err != nil {
			return err
		}

		restCfg, err := loadKubeconfig(cfg.Kubeconfig)
		if err != nil {
			return err
		}
		cl, err := cluster.New(restCfg)
		if err != nil {
			return err
		}

		ctx := ctrl.SetupSignalHandler()
		if cfg.MetricsBindAddress != "" {
			go metrics.Serve(ctx, log.WithName("metrics"), cfg.MetricsBindAddress)
		}

		runner := &orchestrator.Runner{
			Cluster:       cl,
			Clock:         clock.RealClock{},
			Log:           log,
			Label:         cfg.Label,
			Namespace:     cfg.Namespace,
			DryRun:        cfg.DryRun,
			WeeklyOffset:  cfg.WeeklyBoundaryOffset,
			MonthlyOffset: cfg.MonthlyBoundaryOffset,
			DeleteOffset:  cfg.DeleteBoundaryOffset,
		}
		if _, err := runner.Run(ctx); err != nil {
			log.Error(err, "run failed")
			return err
		}
		return nil
	},
}

// defaults pre-populates the Period flag values before flag registration.
var flagDefaults = config.Default()

func init() {
	fl := rootCmd.Flags()
	fl.StringVar(&rootCmdFlags.configFile, "config", "", "Path to a YAML config file; flags override its values")
	fl.StringVar(&rootCmdFlags.kubeconfig, "kubeconfig", "", "Path to a kubeconfig file (default: in-cluster or $KUBECONFIG)")
	fl.StringVar(&rootCmdFlags.label, "label", "", "Label key selecting VirtualMachines to back up (value must be \"true\")")
	fl.StringVar(&rootCmdFlags.namespace, "namespace", "", "Restrict discovery to one namespace (default: all namespaces)")
	fl.BoolVarP(&rootCmdFlags.verbose, "verbose", "v", false, "Emit per-decision trace logging")
	fl.BoolVar(&rootCmdFlags.dryRun, "dry-run", false, "Compute and log the plan without creating or deleting backups")
	fl.Var(&flagDefaults.WeeklyBoundaryOffset, "weekly-boundary-offset", "Age past which backups compete per ISO week")
	fl.Var(&flagDefaults.MonthlyBoundaryOffset, "monthly-boundary-offset", "Age past which backups compete per calendar month")
	fl.Var(&flagDefaults.DeleteBoundaryOffset, "delete-boundary-offset", "Age past which backups are always deleted")
	fl.StringVar(&rootCmdFlags.metricsAddr, "metrics-bind-address", "", "Serve prometheus counters on this address for the duration of the run")
}

// resolveConfig merges the optional config file with command-line flags;
// flags that were set explicitly win.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if rootCmdFlags.configFile != "" {
		loaded, err := config.Load(rootCmdFlags.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	fl := cmd.Flags()
	if fl.Changed("label") {
		cfg.Label = rootCmdFlags.label
	}
	if fl.Changed("namespace") {
		cfg.Namespace = rootCmdFlags.namespace
	}
	if fl.Changed("verbose") {
		cfg.Verbose = rootCmdFlags.verbose
	}
	if fl.Changed("dry-run") {
		cfg.DryRun = rootCmdFlags.dryRun
	}
	if fl.Changed("weekly-boundary-offset") {
		cfg.WeeklyBoundaryOffset = flagDefaults.WeeklyBoundaryOffset
	}
	if fl.Changed("monthly-boundary-offset") {
		cfg.MonthlyBoundaryOffset = flagDefaults.MonthlyBoundaryOffset
	}
	if fl.Changed("delete-boundary-offset") {
		cfg.DeleteBoundaryOffset = flagDefaults.DeleteBoundaryOffset
	}
	if fl.Changed("metrics-bind-address") {
		cfg.MetricsBindAddress = rootCmdFlags.metricsAddr
	}
	if fl.Changed("kubeconfig") {
		cfg.Kubeconfig = rootCmdFlags.kubeconfig
	}
	return cfg, nil
}

func loadKubeconfig(path string) (*rest.Config, error) {
	if path != "" {
		cfg, err := clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig from %s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command; any error has already been reported by the
// time it returns.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
