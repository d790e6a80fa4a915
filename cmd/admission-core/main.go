// Command admission-core is a debug driver for the admission pipeline, not
// the trading host (the real host, exchange connectivity, and portfolio
// persistence are external collaborators per spec §1/§6). It loads a JSON
// fixture bundle, runs Gate 0 through Gate 10, and prints the result chain.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/admission-core/internal/gates"
	"github.com/sawpanic/admission-core/internal/telemetry"
)

const (
	appName = "admission-core"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Admission-core debug driver: runs the gate pipeline against a fixture bar.",
		Version: version,
	}

	var metricsAddr string
	runCmd := &cobra.Command{
		Use:   "run <fixture.json>",
		Short: "Run the gate pipeline once against a fixture bundle and print the result chain.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixture(args[0], metricsAddr)
		},
	}
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus /metrics on this address after running (e.g. :9090)")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("admission-core failed")
		os.Exit(1)
	}
}

func runFixture(path, metricsAddr string) error {
	inputs, err := loadFixture(path)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	result, err := gates.Run(inputs)
	if err != nil {
		return fmt.Errorf("pipeline invariant violation: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewRegistry(reg)
	metrics.Observe(inputs.Market.Symbol, result)

	if result.EntryAllowed {
		log.Info().
			Str("symbol", inputs.Market.Symbol).
			Str("decision_id", result.DecisionID.String()).
			Str("category", string(result.Gate6.Category)).
			Float64("risk_mult", result.Gate6.RiskMult).
			Msg("entry admitted")
	} else {
		log.Warn().
			Str("symbol", inputs.Market.Symbol).
			Str("decision_id", result.DecisionID.String()).
			Str("block_reason", result.BlockReason).
			Msg("entry blocked")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if metricsAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		log.Info().Str("addr", metricsAddr).Msg("serving /metrics")
		return http.ListenAndServe(metricsAddr, nil)
	}
	return nil
}
