package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/services"
)

var indexProfilesCmd = &cobra.Command{
	Use:   "index-profiles",
	Short: "Embed every stored job profile into the Qdrant collection",
	Long: `Chunks each job profile's requirements, embeds the chunks with the configured
embedding model and replaces the role's points in Qdrant. Requires QDRANT_ENABLED=true.`,
	RunE: runIndexProfiles,
}

var (
	indexChunkSize int
	indexOverlap   int
)

func init() {
	indexProfilesCmd.Flags().IntVar(&indexChunkSize, "chunk-size", 1000, "Maximum characters per chunk")
	indexProfilesCmd.Flags().IntVar(&indexOverlap, "overlap", 200, "Characters repeated between consecutive chunks")
}

func runIndexProfiles(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if d.index == nil {
		return errors.New("qdrant is disabled, set QDRANT_ENABLED=true")
	}

	profiles, err := d.jobRepo.ListProfiles(ctx)
	if err != nil {
		return err
	}

	chunker := services.NewTextChunker()
	failed := 0
	for _, profile := range profiles {
		if err := indexProfile(ctx, d, chunker, profile); err != nil {
			slog.Error("❌ Failed to index profile", "role", profile.Role, "error", err)
			failed++
			continue
		}
	}

	slog.Info("📊 Indexing finished", "profiles", len(profiles), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed to index", failed, len(profiles))
	}
	return nil
}

func indexProfile(ctx context.Context, d *deps, chunker services.TextChunker, profile models.JobProfile) error {
	if err := d.index.DeleteRole(ctx, profile.Role); err != nil {
		return err
	}

	chunks := chunker.ChunkText(profile.RequirementsText(), indexChunkSize, indexOverlap)
	for i, chunk := range chunks {
		embedding, err := d.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		if err := d.index.UpsertChunk(ctx, profile.Role, i, chunk, embedding); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	slog.Info("✅ Profile indexed", "role", profile.Role, "chunks", len(chunks))
	return nil
}
