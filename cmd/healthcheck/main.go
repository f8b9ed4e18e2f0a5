// Command healthcheck probes the local health endpoint and exits non-zero
// unless the service reports healthy. It is the container's HEALTHCHECK:
//
//	HEALTHCHECK --interval=30s --timeout=5s CMD ["/app/healthcheck"]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexzimmer/portfolio/internal/probe"
	"github.com/alexzimmer/portfolio/internal/version"
)

const defaultURL = "http://127.0.0.1:8080/api/healthz"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	url     string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:           "healthcheck",
		Short:         "Probe the portfolio health endpoint",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := probe.NewHTTPClient(opts.url, opts.timeout)
			return run(cmd.Context(), cmd.OutOrStdout(), client, opts.verbose)
		},
	}

	url := defaultURL
	if v := os.Getenv("HEALTHCHECK_URL"); v != "" {
		url = v
	}
	cmd.Flags().StringVar(&opts.url, "url", url, "health endpoint URL (env HEALTHCHECK_URL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 3*time.Second, "request timeout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print the full response body")

	return cmd
}

func run(ctx context.Context, out io.Writer, client probe.Client, verbose bool) error {
	res, err := client.Check(ctx)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	fmt.Fprintf(out, "%d %s", res.StatusCode, res.Status)
	if res.Message != "" {
		fmt.Fprintf(out, " - %s", res.Message)
	}
	fmt.Fprintln(out)
	if verbose {
		fmt.Fprintln(out, string(res.Body))
	}

	if !res.Healthy() {
		return fmt.Errorf("service is %s", res.Status)
	}
	return nil
}
