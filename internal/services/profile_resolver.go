package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/repositories"
)

// ProfileResolver is one strategy for finding the requirements text an
// application is scored against. found is false on a miss.
type ProfileResolver interface {
	Name() string
	Resolve(ctx context.Context, app *models.Application) (text string, found bool, err error)
}

// ProfileChain tries each resolver in order and stops at the first hit.
type ProfileChain struct {
	resolvers []ProfileResolver
	timeout   time.Duration
}

func NewProfileChain(timeout time.Duration, resolvers ...ProfileResolver) *ProfileChain {
	return &ProfileChain{resolvers: resolvers, timeout: timeout}
}

// Resolve returns the requirements text and the name of the resolver that
// produced it. Errors count as misses. No hit yields empty text.
func (c *ProfileChain) Resolve(ctx context.Context, app *models.Application) (string, string) {
	for _, resolver := range c.resolvers {
		text, found, err := c.try(ctx, resolver, app)
		if err != nil {
			slog.WarnContext(ctx, "⚠️ profile resolver failed",
				"resolver", resolver.Name(),
				"application_id", app.ID,
				"error", err,
			)
			continue
		}
		if found {
			return text, resolver.Name()
		}
	}
	return "", ""
}

func (c *ProfileChain) try(ctx context.Context, resolver ProfileResolver, app *models.Application) (string, bool, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	return resolver.Resolve(ctx, app)
}

type jobProfileResolver struct {
	jobRepo repositories.JobRepository
}

// NewJobProfileResolver follows the job's explicit profile reference.
func NewJobProfileResolver(jobRepo repositories.JobRepository) ProfileResolver {
	return &jobProfileResolver{jobRepo: jobRepo}
}

func (r *jobProfileResolver) Name() string { return "job_profile" }

func (r *jobProfileResolver) Resolve(ctx context.Context, app *models.Application) (string, bool, error) {
	job, err := r.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if job.JobProfileID == nil {
		return "", false, nil
	}

	profile, err := r.jobRepo.FindProfileByID(ctx, *job.JobProfileID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	return profile.RequirementsText(), true, nil
}

type roleProfileResolver struct {
	jobRepo repositories.JobRepository
}

// NewRoleProfileResolver matches JobProfile.Role against the declared role exactly.
func NewRoleProfileResolver(jobRepo repositories.JobRepository) ProfileResolver {
	return &roleProfileResolver{jobRepo: jobRepo}
}

func (r *roleProfileResolver) Name() string { return "role_match" }

func (r *roleProfileResolver) Resolve(ctx context.Context, app *models.Application) (string, bool, error) {
	profile, err := r.jobRepo.FindProfileByRole(ctx, app.JobRole)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return profile.RequirementsText(), true, nil
}

type spreadsheetProfileResolver struct {
	sheet SpreadsheetBackend
}

func NewSpreadsheetProfileResolver(sheet SpreadsheetBackend) ProfileResolver {
	return &spreadsheetProfileResolver{sheet: sheet}
}

func (r *spreadsheetProfileResolver) Name() string { return "spreadsheet" }

func (r *spreadsheetProfileResolver) Resolve(ctx context.Context, app *models.Application) (string, bool, error) {
	profile, err := r.sheet.LookupProfile(ctx, app.JobRole)
	if err != nil {
		return "", false, err
	}
	if profile == nil {
		return "", false, nil
	}
	return profile.RequirementsText(), true, nil
}

type semanticProfileResolver struct {
	embedder      Embedder
	index         ProfileIndex
	promptBuilder *PromptBuilder
	minScore      float32
	limit         int
}

// NewSemanticProfileResolver searches the vector index for the indexed role
// closest to the declared one and returns that role's chunks. Matches scoring
// below minScore are ignored.
func NewSemanticProfileResolver(embedder Embedder, index ProfileIndex, minScore float32) ProfileResolver {
	return &semanticProfileResolver{
		embedder:      embedder,
		index:         index,
		promptBuilder: NewPromptBuilder(),
		minScore:      minScore,
		limit:         3,
	}
}

func (r *semanticProfileResolver) Name() string { return "semantic_index" }

func (r *semanticProfileResolver) Resolve(ctx context.Context, app *models.Application) (string, bool, error) {
	embedding, err := r.embedder.GenerateEmbedding(ctx, r.promptBuilder.BuildProfileQuery(app.JobRole))
	if err != nil {
		return "", false, fmt.Errorf("failed to embed profile query: %w", err)
	}

	results, err := r.index.SearchSimilar(ctx, embedding, "", r.limit)
	if err != nil {
		return "", false, err
	}

	best := -1
	for i, result := range results {
		if result.Score >= r.minScore && (best < 0 || result.Score > results[best].Score) {
			best = i
		}
	}
	if best < 0 {
		return "", false, nil
	}

	// Only the closest role's chunks are used, so requirements from
	// different roles never mix.
	role := results[best].Role
	var kept []SearchResult
	for _, result := range results {
		if result.Role == role && result.Score >= r.minScore {
			kept = append(kept, result)
		}
	}

	slog.InfoContext(ctx, "🔎 Nearest indexed profile selected",
		"application_id", app.ID,
		"job_role", app.JobRole,
		"matched_role", role,
		"score", results[best].Score,
	)

	text := FormatProfileMatches(kept)
	return text, text != "", nil
}
