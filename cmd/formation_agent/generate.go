package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/formation-kit/internal/config"
	"github.com/jonathan/formation-kit/internal/db"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/pipeline"
	"github.com/jonathan/formation-kit/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one document from questionnaire answers",
	Long: `Generate a document with the text oracle and print it.

Answers come from --fields-file (a JSON object) and repeated --field key=value flags; flags win.
A value starting with [ or { is read as JSON, so list fields can be passed as --field 'members=["Ada","Alan"]'.

Without --user-id the document is generated for an ad hoc requester described by --tier and
--account-age-days and kept in memory. With --user-id the requester and the stored document
come from the database.`,
	RunE: runGenerate,
}

var (
	genType           string
	genFields         []string
	genFieldsFile     string
	genTier           string
	genAccountAgeDays int
	genUserID         string
	genOutputFile     string
	genAPIKey         string
	genDatabaseURL    string
)

func init() {
	generateCmd.Flags().StringVarP(&genType, "type", "t", "", "Document type (see 'catalog')")
	generateCmd.Flags().StringArrayVarP(&genFields, "field", "f", nil, "Questionnaire answer as key=value (repeatable)")
	generateCmd.Flags().StringVar(&genFieldsFile, "fields-file", "", "Path to a JSON object of questionnaire answers")
	generateCmd.Flags().StringVar(&genTier, "tier", string(types.TierPremium), "Subscription tier of the ad hoc requester")
	generateCmd.Flags().IntVar(&genAccountAgeDays, "account-age-days", 30, "Account age of the ad hoc requester in days")
	generateCmd.Flags().StringVar(&genUserID, "user-id", "", "Generate as a stored user (requires a database)")
	generateCmd.Flags().StringVarP(&genOutputFile, "out", "o", "", "Write the document content to this file")
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")

	_ = generateCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	dt, err := types.ParseDocumentType(genType)
	if err != nil {
		return err
	}
	fields, err := loadFields(genFieldsFile, genFields)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if genAPIKey != "" {
		cfg.APIKey = genAPIKey
	}
	if genDatabaseURL != "" {
		cfg.DatabaseURL = genDatabaseURL
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in := pipeline.Input{DocumentType: dt, Fields: fields}
	var (
		store        db.Store
		entitlements db.EntitlementProvider
	)
	if genUserID != "" {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required with --user-id")
		}
		if in.UserID, err = uuid.Parse(genUserID); err != nil {
			return fmt.Errorf("invalid user_id format: %w", err)
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		store, entitlements = database, database
	} else {
		requester, err := adHocRequester(genTier, genAccountAgeDays)
		if err != nil {
			return err
		}
		mem := db.NewMemoryStore()
		store, entitlements = mem, mem
		in.UserID = uuid.New()
		in.Requester = &requester
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	in.OnProgress = func(e pipeline.ProgressEvent) {
		logger.Info(e.Message, zap.String("step", e.Step), zap.String("category", e.Category))
	}

	orchestrator := pipeline.New(client, store, entitlements, pipeline.Options{
		Logger:           logger,
		BatchConcurrency: cfg.MaxConcurrentGenerations,
	})
	result, err := orchestrator.Generate(ctx, in)
	if err != nil {
		var denied *pipeline.DeniedError
		if errors.As(err, &denied) {
			return fmt.Errorf("%s", denied.Decision.Reason)
		}
		return err
	}

	if genOutputFile != "" {
		if err := os.WriteFile(genOutputFile, []byte(result.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Saved %s to %s (id %s)\n", result.Title, genOutputFile, result.ArtifactID)
		return nil
	}

	observability.NewPrinter(out).PrintArtifact(result.Title, result.Content)
	return nil
}

// loadFields merges a JSON answers file with key=value flags; flags win
func loadFields(path string, pairs []string) (types.FieldValues, error) {
	fields := types.FieldValues{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fields file: %w", err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse fields file %s: %w", path, err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q: expected key=value", pair)
		}
		fields[key] = fieldValue(value)
	}
	return fields, nil
}

// fieldValue decodes JSON arrays and objects, leaving everything else as a string
func fieldValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return raw
}

func adHocRequester(tier string, accountAgeDays int) (types.Requester, error) {
	t, err := types.ParseTier(tier)
	if err != nil {
		return types.Requester{}, err
	}
	if accountAgeDays < 0 {
		return types.Requester{}, fmt.Errorf("--account-age-days must be non-negative")
	}
	return types.Requester{Tier: t, AccountAgeDays: accountAgeDays}, nil
}
