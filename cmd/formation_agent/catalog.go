package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/entitlement"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List document types and the tier each requires",
	Long: `List every document type in the catalog with its required tier.

With --tier, also show whether a requester on that tier (and --account-age-days) may generate each one.`,
	RunE: runCatalog,
}

var (
	catalogTier           string
	catalogAccountAgeDays int
	catalogJSON           bool
)

func init() {
	catalogCmd.Flags().StringVar(&catalogTier, "tier", "", "Show generation access for this tier")
	catalogCmd.Flags().IntVar(&catalogAccountAgeDays, "account-age-days", 30, "Account age used with --tier")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	var requester *types.Requester
	if catalogTier != "" {
		r, err := adHocRequester(catalogTier, catalogAccountAgeDays)
		if err != nil {
			return err
		}
		requester = &r
	}

	rows, err := catalogRows(requester)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalogJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if requester != nil {
			return enc.Encode(entitlement.ResolveAll(*requester))
		}
		return enc.Encode(catalog.All())
	}
	observability.NewPrinter(out).PrintCatalog(rows)
	return nil
}

// catalogRows builds one listing row per catalog entry, with a generate decision when requester is set
func catalogRows(requester *types.Requester) ([]observability.CatalogRow, error) {
	entries := catalog.All()
	rows := make([]observability.CatalogRow, 0, len(entries))
	for _, e := range entries {
		row := observability.CatalogRow{
			DocumentType: string(e.Type),
			Label:        e.Label,
			RequiredTier: string(e.RequiredTier),
		}
		if requester != nil {
			d, err := entitlement.Resolve(e.Type, entitlement.ActionGenerate, *requester)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", e.Type, err)
			}
			allowed := d.Allowed
			row.Allowed = &allowed
			row.Reason = d.Reason
		}
		rows = append(rows, row)
	}
	return rows, nil
}
