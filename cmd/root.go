package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/adapters/journal"
	"github.com/kamal-hamza/vpnadm/internal/adapters/provisioner"
	"github.com/kamal-hamza/vpnadm/internal/adapters/store"
	"github.com/kamal-hamza/vpnadm/internal/core/ports"
	"github.com/kamal-hamza/vpnadm/internal/core/services"
	"github.com/kamal-hamza/vpnadm/pkg/appdirs"
	"github.com/kamal-hamza/vpnadm/pkg/config"
	"github.com/kamal-hamza/vpnadm/pkg/logging"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	noColor bool

	appDirs    *appdirs.Dirs
	appConfig  *config.Config
	configPath string

	// Adapters
	clientStore *store.DirStore
	scriptProv  *provisioner.ScriptProvisioner
	appJournal  ports.Journal

	// Services
	lifecycleService *services.LifecycleService

	appCtx context.Context
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vpnadm",
	Short: "vpnadm - manage OpenVPN client profiles",
	Long: ui.StyleTitle.Render("vpnadm") + " - OpenVPN client manager\n\n" +
		"List, create, inspect and revoke the client profiles kept in the\n" +
		"server's client directory. New clients are issued by the configured\n" +
		"provisioning script.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	RunE:               runDefaultAction,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(describeError(err)))
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/vpnadm/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp resolves configuration and wires adapters into the lifecycle service
func initializeApp(cmd *cobra.Command, args []string) error {
	if noColor || os.Getenv("NO_COLOR") != "" {
		ui.DisableColor()
	}
	logging.Setup(verbose, noColor)

	d, err := appdirs.New()
	if err != nil {
		return fmt.Errorf("failed to resolve application directories: %w", err)
	}
	appDirs = d

	configPath = cfgFile
	if configPath == "" {
		configPath = appDirs.ConfigPath
	}

	// Config commands must work even when the file on disk is broken
	if !needsServices(cmd) {
		cfg, err := config.Load(configPath)
		if err != nil {
			cfg = config.DefaultConfig()
		}
		appConfig = cfg
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	appCtx = newContext()

	clientStore = store.NewDirStore(appConfig.StorePath())
	scriptProv = provisioner.NewScriptProvisioner(appConfig)
	appJournal = openJournal()

	lifecycleService = services.NewLifecycleService(
		clientStore,
		scriptProv,
		services.WithJournal(appJournal),
		services.WithLogger(logging.Component("lifecycle")),
		services.WithTrustProvisionerExit(appConfig.TrustProvisionerExit),
	)

	log.Debug().
		Str("config", configPath).
		Str("store", clientStore.Dir()).
		Str("script", scriptProv.Script()).
		Msg("initialized")

	return nil
}

// openJournal opens the bolt journal, falling back to a no-op journal
// when it is disabled or held by another vpnadm process
func openJournal() ports.Journal {
	if !appConfig.JournalEnabled {
		return journal.NopJournal{}
	}

	if err := appDirs.Initialize(); err != nil {
		log.Warn().Err(err).Msg("journal unavailable")
		return journal.NopJournal{}
	}

	j, err := journal.Open(appDirs.JournalPath())
	if err != nil {
		log.Warn().Err(err).Str("path", appDirs.JournalPath()).Msg("journal unavailable, operations will not be recorded")
		return journal.NopJournal{}
	}
	return j
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if appJournal != nil {
		if err := appJournal.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close journal")
		}
		appJournal = nil
	}
	return nil
}

// needsServices reports whether cmd talks to the client store
func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "config", "help", "completion":
			return false
		}
	}
	return true
}

// runDefaultAction runs the configured action when vpnadm is invoked without a subcommand
func runDefaultAction(cmd *cobra.Command, args []string) error {
	switch appConfig.DefaultAction {
	case "dashboard":
		return runDashboard(cmd, args)
	case "watch":
		return runWatch(cmd, args)
	default:
		return runList(cmd, args)
	}
}

// newContext returns a context that is canceled when a SIGINT is received.
// A second SIGINT exits immediately.
func newContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for range signals {
			if ctx.Err() != nil {
				os.Exit(130)
			}
			fmt.Fprintln(os.Stderr, "\nWaiting for the running operation to stop... (press Ctrl-c again to exit without waiting)")
			cancel()
		}
	}()

	return ctx
}

// getContext returns a context for operations
func getContext() context.Context {
	if appCtx == nil {
		return context.Background()
	}
	return appCtx
}
