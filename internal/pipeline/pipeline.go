package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/karnkeshav/automateresume/internal/common"
	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"
	"github.com/karnkeshav/automateresume/internal/gen"
	"github.com/karnkeshav/automateresume/internal/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Artifact names, fixed per run; a new run overwrites the previous one's
const (
	ArtifactTailoredResume = "tailored_resume.md"
	ArtifactGapAnalysis    = "gap_analysis.json"
	ArtifactFinalResume    = "final_resume.md"
	ArtifactHTML           = "resume.html"
	ArtifactPDF            = "resume.pdf"
	ArtifactError          = "error.txt"
)

// Generator produces text from a generation request
type Generator interface {
	Generate(ctx context.Context, req gen.Request) (string, error)
}

// Renderer exports a Markdown document to HTML and PDF artifacts
type Renderer interface {
	Render(ctx context.Context, markdown, title, htmlPath, pdfPath string) error
}

// Extractor produces plain text from a resume file
type Extractor interface {
	Text(path string) (string, error)
}

// Options holds the per-run pipeline inputs
type Options struct {
	ResumePath string
	Job        prompt.Job

	// MaxIterations is accepted for interface compatibility but drives no
	// looping logic.
	MaxIterations int
}

// Pipeline sequences the five stages: extract, tailor, critique, revise,
// render. Stages run strictly in order; each persists its output as an
// artifact before the next begins. On failure the remaining stages are
// skipped and an error artifact is written.
type Pipeline struct {
	cfg       *config.Config
	generator Generator
	renderer  Renderer
	extractor Extractor
	files     *common.FileProcessor
	logger    *apperrors.Logger
}

// New creates a pipeline from its collaborators
func New(cfg *config.Config, generator Generator, renderer Renderer, extractor Extractor, files *common.FileProcessor, logger *apperrors.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		generator: generator,
		renderer:  renderer,
		extractor: extractor,
		files:     files,
		logger:    logger,
	}
}

// Run executes the full pipeline. Any stage failure aborts the run, writes
// the error artifact, and is returned to the caller for exit-code mapping.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	tracer := otel.Tracer("automateresume.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	span.SetAttributes(
		attribute.String("pipeline.resume_path", opts.ResumePath),
		attribute.String("pipeline.job_title", opts.Job.Title),
	)

	if opts.MaxIterations > 0 && p.logger != nil {
		p.logger.Info("Max iterations requested; single-pass pipeline ignores it",
			"max_iterations", opts.MaxIterations)
	}

	err := p.run(ctx, tracer, opts)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		p.writeErrorArtifact(err)
		return err
	}

	span.SetAttributes(attribute.Bool("success", true))
	return nil
}

func (p *Pipeline) run(ctx context.Context, tracer trace.Tracer, opts Options) error {
	if err := p.files.ValidateOutputDir(p.cfg.App.OutputDir); err != nil {
		return err
	}

	// ExtractText: resolved before any network call, so a missing resume
	// fails fast with its own exit code.
	resumeText, err := p.stageExtract(ctx, tracer, opts.ResumePath)
	if err != nil {
		return err
	}

	// TailorDraft
	tailored, err := p.stageTailor(ctx, tracer, resumeText, opts.Job)
	if err != nil {
		return err
	}

	// CritiqueGaps
	gaps, err := p.stageCritique(ctx, tracer, tailored, opts.Job)
	if err != nil {
		return err
	}

	// ReviseDraft
	final, err := p.stageRevise(ctx, tracer, tailored, gaps)
	if err != nil {
		return err
	}

	// RenderPdf
	if err := p.stageRender(ctx, tracer, final, opts.Job); err != nil {
		return err
	}

	if p.logger != nil {
		p.logger.Info("Pipeline complete", "output_dir", p.cfg.App.OutputDir)
	}

	return nil
}

func (p *Pipeline) stageExtract(ctx context.Context, tracer trace.Tracer, resumePath string) (string, error) {
	_, span := tracer.Start(ctx, "pipeline.extract")
	defer span.End()

	text, err := p.extractor.Text(resumePath)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.Int("extract.characters", len(text)))
	if p.logger != nil {
		p.logger.Info("Extracted resume text", "path", resumePath, "characters", len(text))
	}

	return text, nil
}

func (p *Pipeline) stageTailor(ctx context.Context, tracer trace.Tracer, resumeText string, job prompt.Job) (string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.tailor")
	defer span.End()

	stage := p.cfg.TailorStage()
	tailored, err := p.generator.Generate(ctx, gen.Request{
		Prompt:          prompt.Tailor(stage.Template, resumeText, job),
		Model:           stage.Model,
		Temperature:     stage.Temperature,
		MaxOutputTokens: stage.MaxOutputTokens,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := p.writeArtifact(ArtifactTailoredResume, tailored); err != nil {
		span.RecordError(err)
		return "", err
	}

	return tailored, nil
}

func (p *Pipeline) stageCritique(ctx context.Context, tracer trace.Tracer, tailored string, job prompt.Job) (string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.critique")
	defer span.End()

	stage := p.cfg.CritiqueStage()
	critique, err := p.generator.Generate(ctx, gen.Request{
		Prompt:          prompt.Critique(stage.Template, tailored, job),
		Model:           stage.Model,
		Temperature:     stage.Temperature,
		MaxOutputTokens: stage.MaxOutputTokens,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	// Best effort: the gap analysis is kept as JSON when one can be
	// extracted, and degrades to the raw response otherwise.
	gaps, structured := ExtractJSONObject(critique)
	if !structured {
		gaps = critique
		if p.logger != nil {
			p.logger.Warn("Gap analysis is not parseable JSON, keeping raw text",
				"characters", len(critique))
		}
	}
	span.SetAttributes(attribute.Bool("critique.structured", structured))

	if err := p.writeArtifact(ArtifactGapAnalysis, gaps); err != nil {
		span.RecordError(err)
		return "", err
	}

	return gaps, nil
}

func (p *Pipeline) stageRevise(ctx context.Context, tracer trace.Tracer, tailored, gaps string) (string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.revise")
	defer span.End()

	stage := p.cfg.ReviseStage()
	final, err := p.generator.Generate(ctx, gen.Request{
		Prompt:          prompt.Revision(stage.Template, gaps, tailored),
		Model:           stage.Model,
		Temperature:     stage.Temperature,
		MaxOutputTokens: stage.MaxOutputTokens,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := p.writeArtifact(ArtifactFinalResume, final); err != nil {
		span.RecordError(err)
		return "", err
	}

	return final, nil
}

func (p *Pipeline) stageRender(ctx context.Context, tracer trace.Tracer, final string, job prompt.Job) error {
	ctx, span := tracer.Start(ctx, "pipeline.render")
	defer span.End()

	title := "Tailored Resume"
	if job.Title != "" {
		title = fmt.Sprintf("Tailored Resume - %s", job.Title)
	}

	err := p.renderer.Render(ctx, final, title,
		p.artifactPath(ArtifactHTML), p.artifactPath(ArtifactPDF))
	if err != nil {
		span.RecordError(err)
		return err
	}

	return nil
}

// writeArtifact persists a stage output under the output directory
func (p *Pipeline) writeArtifact(name, content string) error {
	path := p.artifactPath(name)
	if err := p.files.WriteFile(path, content); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Info("Wrote artifact", "artifact", name, "path", path)
	}
	return nil
}

// writeErrorArtifact leaves a debuggable trace of a failed run. A write
// failure here is logged but never masks the original error.
func (p *Pipeline) writeErrorArtifact(runErr error) {
	path := p.artifactPath(ArtifactError)
	if err := p.files.WriteFile(path, runErr.Error()+"\n"); err != nil {
		if p.logger != nil {
			p.logger.Warn("Failed to write error artifact", "path", path, "error", err)
		}
	}
}

func (p *Pipeline) artifactPath(name string) string {
	return filepath.Join(p.cfg.App.OutputDir, name)
}
