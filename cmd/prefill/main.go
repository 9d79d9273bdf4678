// Command prefill is a thin driver around the prefill engine: it reads a
// clinical-records JSON document plus demographics flags, builds the
// confidence-annotated medical-history summary, and prints it as JSON or as
// the rendered conversation guidance.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clinical-prefill-engine/internal/config"
	"github.com/clinical-prefill-engine/internal/domain"
	"github.com/clinical-prefill-engine/internal/prefill"
	"github.com/clinical-prefill-engine/internal/prompts"
)

var (
	inputPath     string
	age           int
	dateOfBirth   string
	biologicalSex string
	studyName     string
	condition     string
)

func main() {
	root := &cobra.Command{
		Use:          "prefill",
		Short:        "Build confidence-annotated medical-history prefills from clinical records",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&inputPath, "input", "", "path to a clinical-records JSON document (omit to build without records)")
	root.PersistentFlags().IntVar(&age, "age", 0, "participant age from the device health API")
	root.PersistentFlags().StringVar(&dateOfBirth, "dob", "", "participant date of birth (YYYY-MM-DD)")
	root.PersistentFlags().StringVar(&biologicalSex, "sex", "", "participant biological sex from the device health API")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the prefill aggregate and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p, err := runBuild(cmd, cfg, cfg.NewLogger())
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return fmt.Errorf("encode prefill: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Build the prefill aggregate and print the conversation guidance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()
			p, err := runBuild(cmd, cfg, logger)
			if err != nil {
				return err
			}
			modifier := prompts.NewModifier(logger)
			guidance := modifier.Render(p, prompts.StudyMetadata{
				StudyName: studyName,
				Condition: condition,
			})
			fmt.Fprint(cmd.OutOrStdout(), guidance)
			return nil
		},
	}
	renderCmd.Flags().StringVar(&studyName, "study-name", "uroflow onboarding", "study name interpolated into the guidance template")
	renderCmd.Flags().StringVar(&condition, "condition", "benign prostatic hyperplasia", "study condition interpolated into the guidance template")

	root.AddCommand(buildCmd, renderCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, cfg *config.Config, logger *logrus.Logger) (*domain.MedicalHistoryPrefill, error) {
	records, err := loadRecords(inputPath)
	if err != nil {
		return nil, err
	}

	var demo *domain.Demographics
	if cmd.Flags().Changed("age") || dateOfBirth != "" || biologicalSex != "" {
		demo = &domain.Demographics{DateOfBirth: dateOfBirth, BiologicalSex: biologicalSex}
		if cmd.Flags().Changed("age") {
			demo.Age = &age
		}
	}

	builder := prefill.NewBuilder(logger).WithClock(cfg.Clock())
	return builder.Build(records, demo), nil
}

func loadRecords(path string) (*domain.ClinicalRecordsInput, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clinical records: %w", err)
	}

	records := &domain.ClinicalRecordsInput{}
	if err := json.Unmarshal(raw, records); err != nil {
		return nil, fmt.Errorf("decode clinical records: %w", err)
	}
	return records, nil
}
