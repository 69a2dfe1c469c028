package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"

	"github.com/reltab/reltab/internal/config"
	"github.com/reltab/reltab/internal/errors"
	"github.com/reltab/reltab/internal/flatten"
	"github.com/reltab/reltab/internal/inspect"
	"github.com/reltab/reltab/internal/models"
	"github.com/reltab/reltab/internal/normalize"
	"github.com/reltab/reltab/internal/parser"
	"github.com/reltab/reltab/internal/registry"
	"github.com/reltab/reltab/internal/writer"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output CSV file (flattened), directory (normalized) or database file (sqlite)." short:"o" type:"path"`
	Mode        string `help:"Conversion mode." short:"m" enum:"flattened,normalized" default:"flattened"`
	Separator   string `help:"Separator for nested keys in flattened mode." short:"s" default:"/"`
	RootTable   string `help:"Root table name in normalized mode." short:"r" default:"root"`
	Format      string `help:"Output format." enum:"csv,sqlite" default:"csv"`
	Inspect     bool   `help:"Print the detected document structure instead of converting."`
	Config      string `help:"Path to a config file. Defaults to the nearest .reltab.yml." type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("reltab"),
		kong.Description("A tool to convert JSON documents to CSV or SQLite tables"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("reltab version %s\n", Version)
		return
	}

	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	err = run(&Context{Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: reltab --help\n")
		os.Exit(1)
	}
}

// resolveConfig merges the config file (explicit or discovered) with CLI
// flags, flags taking precedence.
func resolveConfig() (*config.Config, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, CLI.Mode, CLI.Separator, CLI.RootTable, CLI.Format, CLI.Output)
	if err != nil {
		return nil, err
	}
	if CLI.Debug {
		cfg.Dev.Debug = true
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg.Dev.Debug {
		fmt.Fprintf(os.Stderr, "effective config:\n%s", spew.Sdump(cfg))
	}

	// 1. Parse JSON input
	coll, err := parseInput()
	if err != nil {
		// Error is already wrapped by parseInput
		return err
	}

	// 2. Inspection mode reports structure and stops
	if CLI.Inspect {
		fmt.Print(inspect.Analyze(coll).String())
		return nil
	}

	// 3. Convert and write
	outputPath := cfg.Output.Path
	if outputPath == "" {
		outputPath = defaultOutputPath(CLI.Input, cfg.Mode, cfg.Output.Format)
	}

	opts := writer.Options{}
	if cfg.Naming.SnakeCaseColumns {
		opts.RenameColumn = cfg.ColumnName
	}

	switch cfg.Mode {
	case config.ModeFlattened:
		table := flatten.Flatten(coll, cfg.Separator)
		if cfg.Dev.Debug {
			fmt.Fprintf(os.Stderr, "flattened: %d columns, %d rows\n", len(table.Columns), len(table.Rows))
		}
		if cfg.Output.Format == config.FormatSQLite {
			err = writer.WriteSQLite(outputPath, []*models.Table{table}, opts)
		} else {
			err = writer.WriteFlattened(outputPath, table, opts)
		}
		if err != nil {
			return err
		}
	case config.ModeNormalized:
		reg := registry.New()
		if err := normalize.New(reg).Normalize(coll, cfg.RootTable); err != nil {
			return err
		}
		if cfg.Dev.Debug {
			for _, t := range reg.Tables() {
				fmt.Fprintf(os.Stderr, "table %s: %d columns, %d rows\n", t.Name, len(t.Columns), len(t.Rows))
			}
		}
		if cfg.Output.Format == config.FormatSQLite {
			err = writer.WriteSQLite(outputPath, reg.Tables(), opts)
		} else {
			err = writer.WriteNormalized(outputPath, reg.Tables(), opts)
		}
		if err != nil {
			return err
		}
	default:
		return errors.NewConfigError(fmt.Sprintf("invalid mode '%s'", cfg.Mode), errors.ErrUnknownMode)
	}

	fmt.Fprintf(os.Stderr, "Output written to %s\n", outputPath)
	return nil
}

// defaultOutputPath derives an output location from the input path, keeping
// the input's directory and base name.
func defaultOutputPath(inputPath, mode, format string) string {
	base := "output"
	dir := ""
	if inputPath != "" {
		name := filepath.Base(inputPath)
		base = strings.TrimSuffix(name, filepath.Ext(name))
		dir = filepath.Dir(inputPath)
	}
	if format == config.FormatSQLite {
		return filepath.Join(dir, base+".db")
	}
	if mode == config.ModeNormalized {
		return filepath.Join(dir, base+"_csvs")
	}
	return filepath.Join(dir, base+".csv")
}

// parseInput reads JSON from file or stdin
func parseInput() (models.Collection, error) {
	if CLI.Input != "" {
		// Parse from file
		return parser.ParseFile(CLI.Input)
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Collection{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		// No data provided on stdin and not in interactive mode
		return models.Collection{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Collection{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.Collection{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseString(string(jsonData))
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (models.Collection, error) {
	fmt.Fprintln(os.Stderr, "Reltab Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Collection{}, errors.NewInputError("error reading input", err)
		}
		jsonBuilder.WriteString(line)
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return models.Collection{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}
