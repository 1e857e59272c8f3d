// Command facet evaluates facet scripts and prints a JSON report.
//
//	facet [flags] script.facet
//	facet [flags] -e '(mesh-volume (cube 2))'
//
// A script of "-" is read from standard input. The report holds the value
// of the last expression, any errors and any warnings; the exit status is
// 1 when the script fails and 2 on a usage or configuration error.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("facet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "TOML configuration file")
		expr       = fs.String("e", "", "evaluate this expression instead of a script file")
		backend    = fs.String("backend", "", "kernel backend: sdfx or manifold")
		workers    = fs.Int("workers", 0, "worker goroutines per analysis pass (0: number of CPUs)")
		timeout    = fs.Int("timeout", 0, "evaluation timeout in seconds")
		logfile    = fs.String("logfile", "", "write log messages to this rotated file")
		verbose    = fs.Bool("v", false, "verbose logging")
		summary    = fs.Bool("summary", false, "print a one-line summary to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	source, err := readSource(*expr, fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}

	var cfg config.Config
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "facet: %v\n", err)
			return 2
		}
	}
	err = cfg.Resolve(config.Flags{
		Backend: *backend,
		Workers: *workers,
		Timeout: *timeout,
		Logfile: *logfile,
		Verbose: *verbose,
	})
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}
	cfg.Logging.SetLogger()
	defer logging.Shutdown(stderr)
	logging.Debugf("config: %+v", cfg)

	app, err := NewApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}
	result := app.Evaluate(source)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "facet: encoding report: %v\n", err)
		return 1
	}
	if *summary {
		fmt.Fprintln(stderr, Summary(result))
	}
	if result.Failed() {
		return 1
	}
	return 0
}

// readSource picks the script from -e, a file argument or standard input.
func readSource(expr string, args []string, stdin io.Reader) (string, error) {
	switch {
	case expr != "" && len(args) > 0:
		return "", fmt.Errorf("-e and a script file are mutually exclusive")
	case expr != "":
		return expr, nil
	case len(args) == 0:
		return "", fmt.Errorf("no script given (use -e or a file name, - for stdin)")
	case len(args) > 1:
		return "", fmt.Errorf("only one script file may be given, got %d", len(args))
	case args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
