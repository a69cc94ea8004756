// Package main is the calctrace command line: evaluate expressions, trace
// calculation steps, convert notation, or serve the REST API.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calctrace/calctrace/pkg/api"
	"github.com/calctrace/calctrace/pkg/calc"
	"github.com/calctrace/calctrace/pkg/expr"
	"github.com/calctrace/calctrace/pkg/store"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "calctrace [expression]",
	Short: "Math expression interpreter with step tracing",
	Long: `calctrace parses infix or LaTeX math expressions, evaluates them under a
configurable precision policy, and can print every intermediate step.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator REST API server",
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("calctrace version {{.Version}}\n")

	rootCmd.Flags().Bool("steps", false, "Print every intermediate calculation step")
	rootCmd.Flags().Bool("validate", false, "Only check that the expression parses")
	rootCmd.Flags().String("to", "", "Print the expression in the given notation (plain|latex) instead of evaluating")
	rootCmd.Flags().String("mode", "none", "Format mode: none, truncate, or round")
	rootCmd.Flags().Int("precision", 0, "Format precision")
	rootCmd.Flags().String("unit", "decimal-places", "Precision unit: decimal-places or significant-digits")
	rootCmd.Flags().StringArray("var", nil, "Variable assignment name=value (repeatable)")
	rootCmd.Flags().String("profile", "", "YAML profile with format policy and variables")

	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8791, env PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	expression := args[0]

	calculator := calc.New()

	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		profile, err := calc.LoadProfile(path)
		if err != nil {
			return err
		}
		if err := profile.Apply(calculator); err != nil {
			return err
		}
	}

	mode, _ := cmd.Flags().GetString("mode")
	if mode != "none" {
		precision, _ := cmd.Flags().GetInt("precision")
		unit, _ := cmd.Flags().GetString("unit")
		policy, err := calc.FormatConfig{Mode: mode, Precision: precision, Unit: unit}.Policy()
		if err != nil {
			return err
		}
		calculator.SetPolicy(policy)
	}

	assignments, _ := cmd.Flags().GetStringArray("var")
	for _, assignment := range assignments {
		name, raw, ok := strings.Cut(assignment, "=")
		if !ok {
			return fmt.Errorf("invalid --var %q, expected name=value", assignment)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid --var %q: %v", assignment, err)
		}
		calculator.SetVariable(strings.TrimSpace(name), value)
	}

	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		if !calculator.Validate(expression) {
			_, err := calculator.Parse(expression)
			return err
		}
		fmt.Println("valid")
		return nil
	}

	if to, _ := cmd.Flags().GetString("to"); to != "" {
		notation := expr.Plain
		switch to {
		case "plain":
		case "latex":
			notation = expr.LaTeX
		default:
			return fmt.Errorf("unknown notation %q, expected plain or latex", to)
		}
		formatted, err := calculator.FormatExpression(expression, notation)
		if err != nil {
			return err
		}
		fmt.Println(formatted)
		return nil
	}

	if withSteps, _ := cmd.Flags().GetBool("steps"); withSteps {
		result, steps, err := calculator.EvaluateSteps(expression)
		if err != nil {
			return err
		}
		for i, step := range steps {
			fmt.Printf("%2d. %s = %s  (%s)\n", i+1, step.Expression, step.Result, step.Operation)
		}
		fmt.Println(expr.FormatResult(result))
		return nil
	}

	result, err := calculator.Evaluate(expression)
	if err != nil {
		return err
	}
	fmt.Println(expr.FormatResult(result))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8791")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}
	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	server := api.New(store.New())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down calctrace server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("calctrace API listening on %s", addr)
	return server.Listen(addr)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
