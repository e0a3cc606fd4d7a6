package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/application/dto"
	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/commercetools"
	"github.com/vsinha/pluanalyzer/pkg/interfaces/cli/output"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
)

// Session data sources
const (
	SourceFiles         = "files"
	SourceCommerceTools = "commercetools"
)

// AnalyzeConfig holds configuration for the analyze command
type AnalyzeConfig struct {
	ScenarioDir   string
	PlantsFile    string
	InventoryFile string
	StatusFile    string
	ProductFile   string
	Source        string
	OutputDir     string
	Format        string
	Filter        string
	Verbose       bool
	Stdout        io.Writer
}

// AnalyzeCommand runs one assortment analysis from the command line
type AnalyzeCommand struct {
	config AnalyzeConfig
	app    *App
}

// NewAnalyzeCommand creates a new analyze command with the given configuration
func NewAnalyzeCommand(config AnalyzeConfig, app *App) *AnalyzeCommand {
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Source == "" {
		config.Source = SourceFiles
	}
	return &AnalyzeCommand{config: config, app: app}
}

// Execute runs the analyze command
func (c *AnalyzeCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	filter, err := entities.ParseRecommendationFilter(c.config.Filter)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	start := time.Now()

	inputs, err := c.loadSession(ctx, files)
	if err != nil {
		return err
	}

	var report *dto.Report
	if path, ok := files["plants"]; ok {
		plants, err := c.app.Loader.LoadPlantsFile(path)
		if err != nil {
			return fmt.Errorf("error loading plants: %w", err)
		}
		report, err = c.app.Service.RunWithPlants(ctx, plants, inputs)
		if err != nil {
			return err
		}
	} else {
		report, err = c.app.Service.Run(ctx, inputs)
		if err != nil {
			return fmt.Errorf("%w (import plant data with `plants import` or pass --plants)", err)
		}
	}

	return output.Generate(report, output.Config{
		Format:      c.config.Format,
		OutputDir:   c.config.OutputDir,
		Verbose:     c.config.Verbose,
		Filter:      filter,
		DSLocations: c.app.Config.Analysis.DSLocations,
		Elapsed:     time.Since(start),
		InputFiles:  files,
		Stdout:      c.config.Stdout,
	})
}

// validateInputs validates the command configuration
func (c *AnalyzeCommand) validateInputs() error {
	switch c.config.Source {
	case SourceFiles:
		if c.config.ScenarioDir == "" &&
			(c.config.InventoryFile == "" || c.config.StatusFile == "" || c.config.ProductFile == "") {
			return fmt.Errorf("must specify either --scenario directory or --inventory, --status and --product files")
		}
	case SourceCommerceTools:
		if c.config.ScenarioDir == "" && c.config.ProductFile == "" {
			return fmt.Errorf("--product file is required when reading from %s", SourceCommerceTools)
		}
		if c.app.CommerceTools == nil {
			return apperrors.NewUnavailableError("CommerceTools credentials not configured")
		}
	default:
		return fmt.Errorf("unsupported source: %s", c.config.Source)
	}
	return nil
}

// resolveInputFiles determines the actual file paths to use
func (c *AnalyzeCommand) resolveInputFiles() (map[string]string, error) {
	files := make(map[string]string)

	if c.config.ScenarioDir != "" {
		files["product"] = filepath.Join(c.config.ScenarioDir, "product.csv")
		if c.config.Source == SourceFiles {
			files["inventory"] = filepath.Join(c.config.ScenarioDir, "inventory.csv")
			files["status"] = filepath.Join(c.config.ScenarioDir, "status.csv")
		}
		// plants.csv is optional in a scenario; stored plant data is used without it
		plants := filepath.Join(c.config.ScenarioDir, "plants.csv")
		if _, err := os.Stat(plants); err == nil {
			files["plants"] = plants
		}
	} else {
		files["product"] = c.config.ProductFile
		if c.config.Source == SourceFiles {
			files["inventory"] = c.config.InventoryFile
			files["status"] = c.config.StatusFile
		}
	}
	if c.config.PlantsFile != "" {
		files["plants"] = c.config.PlantsFile
	}

	// Validate files exist
	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// loadSession reads the product master and the inventory and status feeds
func (c *AnalyzeCommand) loadSession(ctx context.Context, files map[string]string) (dto.SessionInputs, error) {
	var inputs dto.SessionInputs
	var err error

	if inputs.Products, err = c.app.Loader.LoadProductsFile(files["product"]); err != nil {
		return inputs, fmt.Errorf("error loading products: %w", err)
	}

	if c.config.Source == SourceCommerceTools {
		log := commercetools.NewRequestLog()
		dataset, err := c.app.CommerceTools.Fetch(ctx, log, func(p commercetools.Progress) {
			if c.config.Verbose {
				fmt.Fprintf(c.config.Stdout, "  [%3d%%] %s\n", p.Percent, p.Message)
			}
		})
		if err != nil {
			return inputs, fmt.Errorf("error fetching from CommerceTools: %w", err)
		}
		inputs.Inventory = dataset.Inventory
		inputs.Status = dataset.Status
		if c.config.Verbose {
			fmt.Fprintf(c.config.Stdout, "✅ Fetched %d status and %d inventory records (%d subrequests)\n\n",
				len(dataset.Status), len(dataset.Inventory), dataset.Requests.Total)
		}
		return inputs, nil
	}

	if inputs.Inventory, err = c.app.Loader.LoadInventoryFile(files["inventory"]); err != nil {
		return inputs, fmt.Errorf("error loading inventory: %w", err)
	}
	if inputs.Status, err = c.app.Loader.LoadStatusFile(files["status"]); err != nil {
		return inputs, fmt.Errorf("error loading status: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.config.Stdout, "✅ Data loaded successfully:\n")
		fmt.Fprintf(c.config.Stdout, "  Products: %d\n", len(inputs.Products))
		fmt.Fprintf(c.config.Stdout, "  Inventory: %d\n", len(inputs.Inventory))
		fmt.Fprintf(c.config.Stdout, "  Status: %d\n", len(inputs.Status))
		fmt.Fprintln(c.config.Stdout)
	}
	return inputs, nil
}

// printHeader prints the command header information
func (c *AnalyzeCommand) printHeader(files map[string]string) {
	fmt.Fprintf(c.config.Stdout, "🚀 PLU Analyzer\n")
	fmt.Fprintf(c.config.Stdout, "Source: %s\n", c.config.Source)
	fmt.Fprintf(c.config.Stdout, "Input files:\n")
	for _, kind := range []string{"plants", "inventory", "status", "product"} {
		if path, ok := files[kind]; ok {
			fmt.Fprintf(c.config.Stdout, "  %s: %s\n", kind, path)
		}
	}
	fmt.Fprintf(c.config.Stdout, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.config.Stdout, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.config.Stdout)
}
