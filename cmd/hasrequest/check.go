package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/simman/go-hasrequest/internal/assertion"
	"github.com/simman/go-hasrequest/internal/capture"
	"github.com/simman/go-hasrequest/internal/config"
	"github.com/simman/go-hasrequest/internal/fuzzy"
	"github.com/simman/go-hasrequest/pkg/logger"
)

type checkOptions struct {
	configPath string
	source     string
	name       string
	filter     string
	rule       string
	params     []string
	keysOnly   bool
	jsonOutput bool
	logLevel   string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check captured requests against assertions",
		Example: `  hasrequest check --source session.har --filter /collect --param ev=click --param 'id=12.*'
  hasrequest check --source http://localhost:22222 --config hasrequest.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Configuration file with assertions")
	f.StringVarP(&opts.source, "source", "s", "", "Records file (JSON, YAML, HAR) or capture proxy URL")
	f.StringVar(&opts.name, "name", "", "Name of the ad hoc assertion")
	f.StringVarP(&opts.filter, "filter", "f", "", "Substring the request URL must contain")
	f.StringVar(&opts.rule, "rule", "", "Rule expression narrowing candidate requests")
	f.StringArrayVarP(&opts.params, "param", "p", nil, "Expected query parameter, key=pattern or key==literal (repeatable)")
	f.BoolVar(&opts.keysOnly, "keys-only", false, "Compare parameter keys only")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Diagnostics level written to stderr")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, opts *checkOptions) error {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	diag := logger.New(os.Stderr, "text").Level(level)

	assertions, err := opts.assertions()
	if err != nil {
		return err
	}

	results, failed := assertion.EvaluateAll(ctx, capture.NewProvider(opts.source), assertions, diag)
	if results == nil {
		return failed
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printResults(out, results)
	}

	if failed != nil {
		return fmt.Errorf("%d of %d assertions failed", len(multierr.Errors(failed)), len(results))
	}
	return nil
}

// assertions combines the configured assertions with the ad hoc one from
// flags, in that order.
func (o *checkOptions) assertions() ([]assertion.Assertion, error) {
	var out []assertion.Assertion
	if o.configPath != "" {
		cfg, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg.Assertions...)
	}

	if o.filter != "" || len(o.params) > 0 || o.rule != "" {
		a := assertion.Assertion{
			Name:     o.name,
			Filter:   o.filter,
			Rule:     o.rule,
			KeysOnly: o.keysOnly,
		}
		if len(o.params) > 0 {
			a.Params = fuzzy.ParameterSet{}
			for _, p := range o.params {
				key, want, err := fuzzy.ParseParam(p)
				if err != nil {
					return nil, err
				}
				a.Params = a.Params.Set(key, want)
			}
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("nothing to check: pass --filter or a --config with assertions")
	}
	return out, nil
}

func printResults(out io.Writer, results []assertion.Result) {
	for _, res := range results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		label := res.Message
		if res.Name != "" {
			label = res.Name + ": " + label
		}
		fmt.Fprintf(out, "%s %s\n  expected: %s\n  actual:   %s\n", status, label, res.Expected, res.Actual)
	}
}
