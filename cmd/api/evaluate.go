package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sngm3741/diagnostic-services/api/internal/catalog"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/application"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

type evaluateFlags struct {
	catalogKey string
	catalogDir string
	answers    []string
	asJSON     bool
}

type evaluateOutput struct {
	Catalog        string `json:"catalog"`
	Score          int    `json:"score"`
	Tier           string `json:"tier"`
	Recommendation string `json:"recommendation"`
	FollowUp       string `json:"followUp"`
}

func newEvaluateCmd() *cobra.Command {
	f := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a set of answers without recording them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Load(f.catalogDir)
			if err != nil {
				return err
			}
			svc := application.NewDiagnosticService(application.ServiceConfig{Catalogs: store})
			eval, err := svc.Evaluate(cmd.Context(), f.catalogKey, domain.AnswersFromValues(f.answers))
			if err != nil {
				return err
			}

			out := evaluateOutput{
				Catalog:        f.catalogKey,
				Score:          eval.Score,
				Tier:           eval.TierLabel(),
				Recommendation: eval.Recommendation,
				FollowUp:       eval.FollowUp,
			}
			w := cmd.OutOrStdout()
			if f.asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			fmt.Fprintf(w, "score:          %d\n", out.Score)
			fmt.Fprintf(w, "tier:           %s\n", out.Tier)
			fmt.Fprintf(w, "recommendation: %s\n", out.Recommendation)
			fmt.Fprintf(w, "follow-up:      %s\n", out.FollowUp)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.catalogKey, "catalog", "digital-transformation", "Catalog key")
	flags.StringSliceVar(&f.answers, "answers", nil, "Answer values in question order (e.g. 5,3,50)")
	flags.BoolVar(&f.asJSON, "json", false, "Print JSON")
	addCatalogDirFlag(cmd, &f.catalogDir)
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
