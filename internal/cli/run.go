package cli

import (
	"github.com/karnkeshav/automateresume/internal/common"
	"github.com/karnkeshav/automateresume/internal/extract"
	"github.com/karnkeshav/automateresume/internal/gen"
	"github.com/karnkeshav/automateresume/internal/pipeline"
	"github.com/karnkeshav/automateresume/internal/prompt"
	"github.com/karnkeshav/automateresume/internal/render"
	"github.com/karnkeshav/automateresume/internal/utils"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the resume tailoring pipeline",
	Long: `Run the full tailoring pipeline: extract the resume text, tailor it to
the job description, critique the draft for gaps, revise it, and render the
final draft to PDF. Artifacts for every stage land in the output directory.`,
	RunE: runPipeline,
}

var runFlags struct {
	resume         string
	jobTitle       string
	jobDescription string
	company        string
	maxIterations  int
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.resume, "resume", "r", "", "Path to the resume file (required)")
	runCmd.Flags().StringVarP(&runFlags.jobTitle, "job-title", "t", "", "Target job title")
	runCmd.Flags().StringVarP(&runFlags.jobDescription, "job-description", "d", "", "Target job description text")
	runCmd.Flags().StringVarP(&runFlags.company, "company", "c", "", "Target company name")
	runCmd.Flags().IntVar(&runFlags.maxIterations, "max-iterations", 0, "Maximum revision iterations (accepted for compatibility, single pass only)")

	_ = runCmd.MarkFlagRequired("resume")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	logger.Info("Starting tailoring pipeline",
		"resume", runFlags.resume,
		"job_title", runFlags.jobTitle,
		"company", runFlags.company,
		"model", cfg.AI.Model,
		"output_dir", cfg.App.OutputDir)

	if !utils.IsDocumentFile(runFlags.resume) {
		logger.Warn("Resume file has an unrecognized extension",
			"resume", runFlags.resume,
			"extension", utils.GetFileExtension(runFlags.resume))
	}

	files := common.NewFileProcessor(logger)
	client := gen.NewClient(&cfg.AI, logger)
	renderer := render.NewRenderer(cfg.Render, files, logger)
	extractor := extract.NewExtractor(logger, cfg.App.MaxFileSize)

	p := pipeline.New(cfg, client, renderer, extractor, files, logger)

	return p.Run(cmd.Context(), pipeline.Options{
		ResumePath: runFlags.resume,
		Job: prompt.Job{
			Title:       runFlags.jobTitle,
			Company:     runFlags.company,
			Description: runFlags.jobDescription,
		},
		MaxIterations: runFlags.maxIterations,
	})
}
