package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/config"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/logger"
	httpapi "github.com/vsinha/pluanalyzer/pkg/interfaces/http"
)

// rootOptions are the global flags shared by every subcommand
type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCommand builds the pluanalyzer command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "pluanalyzer",
		Short: "Reconcile PLU inventory coverage against storefront publication",
		Long: `pluanalyzer joins the plant master, the inventory feed, the publication status
feed and the product master, and recommends which PLUs to publish or unpublish
on the storefront based on how many active stores carry stock.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Logger.Level = opts.logLevel
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := logger.Init(cfg.Logger); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newPlantsCmd(opts),
		newCTCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// withApp builds the App for one command invocation and closes it afterwards
func withApp(cmd *cobra.Command, opts *rootOptions, run func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return run(ctx, app)
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var cfg AnalyzeConfig

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the assortment analysis",
		Long: `Run the assortment analysis over the session files.

Plant data comes from --plants when given, otherwise from storage (see "plants import").
With --source commercetools the inventory and status feeds are fetched from the storefront
and only --product is read from disk.

A --scenario directory may hold product.csv, inventory.csv, status.csv and optionally plants.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Stdout = cmd.OutOrStdout()
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				return NewAnalyzeCommand(cfg, app).Execute(ctx)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ScenarioDir, "scenario", "", "directory containing the session CSV files")
	f.StringVar(&cfg.PlantsFile, "plants", "", "plant master CSV (overrides stored plant data)")
	f.StringVar(&cfg.InventoryFile, "inventory", "", "inventory CSV")
	f.StringVar(&cfg.StatusFile, "status", "", "publication status CSV")
	f.StringVar(&cfg.ProductFile, "product", "", "product master CSV")
	f.StringVar(&cfg.Source, "source", SourceFiles, "session source: files or commercetools")
	f.StringVar(&cfg.Format, "format", "text", "output format: text, json, csv")
	f.StringVarP(&cfg.OutputDir, "output", "o", "", "output directory for results")
	f.StringVar(&cfg.Filter, "filter", string(entities.DefaultRecommendationFilter), "recommendation filter: All, Action, Publish, Publish - TEMP, Unpublish, No Action")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable verbose output")
	return cmd
}

func newPlantsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "Manage the stored plant master",
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a plant master CSV, replacing stored plant data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				records, err := app.Loader.LoadPlantsFile(args[0])
				if err != nil {
					return err
				}
				status, err := app.Service.ImportPlants(ctx, records, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d plant rows (%d active stores) from %s\n",
					status.RowCount, status.ActiveStores, args[0])
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored plant data status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				status, err := app.Service.PlantStatus(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), status)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored plant data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				if err := app.Service.ClearPlants(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "🗑️  Plant data cleared")
				return nil
			})
		},
	}

	cmd.AddCommand(importCmd, showCmd, clearCmd)
	return cmd
}

func newCTCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ct",
		Short: "CommerceTools storefront commands",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether CommerceTools credentials are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), map[string]bool{
				"configured": opts.cfg.CommerceTools.Configured(),
			})
		},
	}

	cmd.AddCommand(statusCmd)
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			router := httpapi.NewRouter(httpapi.Dependencies{
				Server:        opts.cfg.Server,
				Service:       app.Service,
				Loader:        app.Loader,
				DSLocations:   opts.cfg.Analysis.DSLocations,
				CommerceTools: app.CommerceTools,
				Metrics:       app.Metrics,
				Logger:        logger.WithComponent("http"),
			})
			return router.Run(ctx)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
