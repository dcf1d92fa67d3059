package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/app"
	"github.com/specialistvlad/dicompiler/internal/compiler"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dicompiler", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dicompiler - Compiles declarative configuration into a Go dependency injection container.

Usage:
  dicompiler [options] CONFIG...

Arguments:
  CONFIG
    Path to a .hcl, .yaml, .yml or .json file, or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	outFlag := flagSet.String("out", "", "Write the generated container to this file instead of stdout.")
	classFlag := flagSet.String("class", compiler.DefaultClassName, "Name of the generated container type.")
	packageFlag := flagSet.String("package", compiler.DefaultPackage, "Package of the generated file.")
	dynamicFlag := flagSet.String("dynamic", "", "Comma-separated parameters resolved when the container runs.")
	debugFlag := flagSet.Bool("debug", false, "Generate a container with diagnostics enabled.")
	cacheFlag := flagSet.Bool("cache", false, "Skip compiling while the output is up to date. Requires -out.")
	watchFlag := flagSet.Bool("watch", false, "Recompile when the configuration changes. Requires -out.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No configuration provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ConfigPaths:   flagSet.Args(),
		OutputPath:    *outFlag,
		ClassName:     *classFlag,
		Package:       *packageFlag,
		DynamicParams: splitList(*dynamicFlag),
		Debug:         *debugFlag,
		Cache:         *cacheFlag,
		Watch:         *watchFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
