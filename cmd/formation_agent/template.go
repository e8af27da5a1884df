package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/formation-kit/internal/templates"
	"github.com/jonathan/formation-kit/internal/types"
)

var templateCmd = &cobra.Command{
	Use:   "template <document-type>",
	Short: "Print the free static template for a document type",
	Long:  "Print the static, non-generated template for a document type. Templates are available on every tier.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplate,
}

var templateOutputFile string

func init() {
	templateCmd.Flags().StringVarP(&templateOutputFile, "out", "o", "", "Write the template to this file")
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	dt, err := types.ParseDocumentType(args[0])
	if err != nil {
		return err
	}
	tmpl, err := templates.Render(dt)
	if err != nil {
		return err
	}

	if templateOutputFile != "" {
		if err := os.WriteFile(templateOutputFile, []byte(tmpl.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s template to %s\n", tmpl.Title, templateOutputFile)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), tmpl.Content)
	return err
}
