package prompt

import "fmt"

// Job holds the job metadata interpolated into every stage prompt
type Job struct {
	Title       string
	Company     string
	Description string
}

// DefaultTailorTemplate instructs the model to emit only a Markdown resume.
// Placeholders in order: job title, company, job description, resume text.
const DefaultTailorTemplate = `You are an expert resume writer with a strict commitment to honesty and accuracy. Tailor the resume below to the target job. Never invent, exaggerate, or misattribute skills or experience; every statement must be traceable to the original resume.

**Requirements:**
- Output ONLY the resume in Markdown. No preamble, no commentary, no code fences.
- Keep it to roughly two pages.
- Use exactly these section headings: ## Summary, ## Skills, ## Experience, ## Education.
- Emphasize the skills and experience most relevant to the job, reordering and rewording but never fabricating.

**Target Job:** %s at %s

**Job Description:**
-----
%s
-----

**Resume:**
-----
%s
-----`

// DefaultCritiqueTemplate instructs the model to return a JSON gap analysis.
// Placeholders in order: job title, company, job description, tailored resume.
const DefaultCritiqueTemplate = `You are an expert resume reviewer. Compare the tailored resume below against the target job and identify the most important gaps.

**Requirements:**
- Return ONLY a JSON object, no commentary and no code fences.
- The object must have a "gaps" array of at most 10 entries.
- Each entry is an object with exactly these fields:
  - "issue": what is missing or weak
  - "importance": "high", "medium", or "low"
  - "fix": a concrete rewording or restructuring that addresses the issue using only material already in the resume

**Target Job:** %s at %s

**Job Description:**
-----
%s
-----

**Tailored Resume:**
-----
%s
-----`

// DefaultRevisionTemplate instructs the model to emit only the revised resume.
// Placeholders in order: gap analysis, tailored resume.
const DefaultRevisionTemplate = `You are an expert resume writer. Revise the tailored resume below by applying the fixes from the gap analysis. Never invent skills or experience; only reword, reorder, and re-emphasize what is already there.

**Requirements:**
- Output ONLY the revised resume in Markdown. No preamble, no commentary, no code fences.
- Keep the existing section headings.
- Keep it to roughly two pages.

**Gap Analysis:**
-----
%s
-----

**Tailored Resume:**
-----
%s
-----`

// Tailor builds the stage-1 prompt from the resume text and job metadata.
// An empty template selects the built-in default.
func Tailor(template, resume string, job Job) string {
	return fmt.Sprintf(resolveTemplate(template, DefaultTailorTemplate),
		job.Title, job.Company, job.Description, resume)
}

// Critique builds the stage-2 prompt from the tailored draft and job metadata
func Critique(template, tailored string, job Job) string {
	return fmt.Sprintf(resolveTemplate(template, DefaultCritiqueTemplate),
		job.Title, job.Company, job.Description, tailored)
}

// Revision builds the stage-3 prompt from the gap analysis and the tailored
// draft. The gap analysis may be JSON or opaque text; the builder does not
// care which.
func Revision(template, gaps, tailored string) string {
	return fmt.Sprintf(resolveTemplate(template, DefaultRevisionTemplate),
		gaps, tailored)
}

// resolveTemplate returns the override when set, the default otherwise
func resolveTemplate(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
