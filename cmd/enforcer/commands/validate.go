package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/internal/severity"
	"github.com/robhayesmba/openapi-enforcer/loader"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Strict     bool
	NoWarnings bool
	Quiet      bool
	Verbose    bool
	Format     string
}

// ValidateReport is the structured output of the validate command.
type ValidateReport struct {
	Valid        bool            `json:"valid" yaml:"valid"`
	Version      string          `json:"version" yaml:"version"`
	ErrorCount   int             `json:"errorCount" yaml:"errorCount"`
	WarningCount int             `json:"warningCount" yaml:"warningCount"`
	Errors       []errtree.Issue `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings     []errtree.Issue `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.BoolVar(&flags.Strict, "strict", false, "treat warnings as errors")
	fs.BoolVar(&flags.NoWarnings, "no-warnings", false, "suppress warning messages (only show errors)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output validation result, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output validation result, no diagnostic messages")
	fs.BoolVar(&flags.Verbose, "v", false, "log debug output to stderr")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log debug output to stderr")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: openapi-enforcer validate [flags] <file|url|->\n\n")
		Writef(fs.Output(), "Validate an OpenAPI 2.0 or 3.0 document against the version it declares.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nOutput Formats:\n")
		Writef(fs.Output(), "  text (default)  Error tree mirroring the document structure\n")
		Writef(fs.Output(), "  json            JSON format for programmatic processing\n")
		Writef(fs.Output(), "  yaml            YAML format for programmatic processing\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  openapi-enforcer validate openapi.yaml\n")
		Writef(fs.Output(), "  openapi-enforcer validate https://example.com/api/openapi.yaml\n")
		Writef(fs.Output(), "  openapi-enforcer validate --strict swagger.json\n")
		Writef(fs.Output(), "  cat openapi.yaml | openapi-enforcer validate -q -\n")
		Writef(fs.Output(), "  openapi-enforcer validate --format json openapi.yaml | jq '.valid'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Validation successful\n")
		Writef(fs.Output(), "  1    Validation failed with errors\n")
	}

	return fs, flags
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("validate command requires exactly one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	logger, flush := newLogger(flags.Verbose)
	defer flush()

	specPath := fs.Arg(0)
	startTime := time.Now()
	doc, err := loadSpec(context.Background(), specPath, logger)
	if err != nil {
		return err
	}
	result, err := enforcer.Validate(doc.Data, enforcer.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	totalTime := time.Since(startTime)

	report := ValidateReport{
		Version: result.Version.String(),
		Errors:  result.Errors.Issues(severity.SeverityError),
	}
	if flags.Strict {
		report.Errors = append(report.Errors, result.Warnings.Issues(severity.SeverityError)...)
	} else if !flags.NoWarnings {
		report.Warnings = result.Warnings.Issues(severity.SeverityWarning)
	}
	report.ErrorCount = len(report.Errors)
	report.WarningCount = len(report.Warnings)
	report.Valid = report.ErrorCount == 0

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(report, flags.Format); err != nil {
			return err
		}
		return validateExit(report)
	}

	if !flags.Quiet {
		Writef(stderr, "OpenAPI Definition Validator\n")
		Writef(stderr, "============================\n\n")
		OutputSpecHeader(specPath, report.Version)
		Writef(stderr, "Source Size: %s\n", loader.FormatSize(doc.SourceSize))
		Writef(stderr, "Total Time: %v\n\n", totalTime)

		if result.Errors.HasMessages() {
			Writef(stderr, "%s\n\n", result.Errors)
		}
		if result.Warnings.HasMessages() && !flags.NoWarnings {
			Writef(stderr, "%s\n\n", result.Warnings)
		}
	}

	if report.Valid {
		Writef(stdout, "✓ Validation passed")
		if report.WarningCount > 0 {
			Writef(stdout, " with %d warning(s)", report.WarningCount)
		}
		Writef(stdout, "\n")
		return nil
	}
	Writef(stdout, "✗ Validation failed: %d error(s)", report.ErrorCount)
	if report.WarningCount > 0 {
		Writef(stdout, ", %d warning(s)", report.WarningCount)
	}
	Writef(stdout, "\n")
	return validateExit(report)
}

func validateExit(report ValidateReport) error {
	if report.Valid {
		return nil
	}
	return &ExitError{Code: 1, Message: fmt.Sprintf("validation failed with %d error(s)", report.ErrorCount)}
}
