package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/formation-kit/internal/equity"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/types"
)

var equityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Compute a founder equity split",
	Long: `Compute each founder's equity percentage from skills, capital, time and IP scores (0-10).

Founders come from repeated --founder "Name:skills,capital,time,ip" flags or from --in,
a JSON file holding either an array of founders or {"founders": [...]}.`,
	RunE: runEquity,
}

var (
	equityFounders  []string
	equityInputFile string
	equityJSON      bool
)

func init() {
	equityCmd.Flags().StringArrayVar(&equityFounders, "founder", nil, `Founder as "Name:skills,capital,time,ip" (repeatable)`)
	equityCmd.Flags().StringVarP(&equityInputFile, "in", "i", "", "Path to a JSON file of founders")
	equityCmd.Flags().BoolVar(&equityJSON, "json", false, "Print the allocations as JSON")
	rootCmd.AddCommand(equityCmd)
}

func runEquity(cmd *cobra.Command, _ []string) error {
	founders, err := loadFounders(equityInputFile, equityFounders)
	if err != nil {
		return err
	}

	allocations, err := equity.Compute(founders)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if equityJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(types.EquityResponse{Allocations: allocations})
	}
	observability.NewPrinter(out).PrintAllocations(allocations)
	return nil
}

// loadFounders reads founders from a JSON file and appends any given by flag
func loadFounders(path string, specs []string) ([]types.FounderContribution, error) {
	var founders []types.FounderContribution
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read founders file: %w", err)
		}
		if err := json.Unmarshal(data, &founders); err != nil {
			var req types.EquityRequest
			if err2 := json.Unmarshal(data, &req); err2 != nil {
				return nil, fmt.Errorf("failed to parse founders file %s: %w", path, err)
			}
			founders = req.Founders
		}
	}

	for _, spec := range specs {
		f, err := parseFounder(spec)
		if err != nil {
			return nil, err
		}
		founders = append(founders, f)
	}

	if len(founders) == 0 {
		return nil, fmt.Errorf("no founders given: use --founder or --in")
	}
	return founders, nil
}

// parseFounder parses "Name:skills,capital,time,ip"
func parseFounder(spec string) (types.FounderContribution, error) {
	name, scores, ok := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return types.FounderContribution{}, fmt.Errorf("invalid --founder %q: expected Name:skills,capital,time,ip", spec)
	}

	parts := strings.Split(scores, ",")
	if len(parts) != 4 {
		return types.FounderContribution{}, fmt.Errorf("invalid --founder %q: expected 4 scores, got %d", spec, len(parts))
	}
	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return types.FounderContribution{}, fmt.Errorf("invalid --founder %q: score %q is not a number", spec, p)
		}
		values[i] = v
	}

	return types.FounderContribution{
		Name:    name,
		Skills:  values[0],
		Capital: values[1],
		Time:    values[2],
		IP:      values[3],
	}, nil
}
