package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/restore-pt/clinibot/internal/config"
	"github.com/restore-pt/clinibot/internal/rag"
)

var ingestBatchSize int

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest clinic documents into the vector store",
	Long: `Ingest a clinic reference document into the vector store.

The file is split into chunks on blank lines. The existing collection
contents are deleted and fully re-upserted, so the store always mirrors
the source file.

Examples:
  clinibot ingest clinic_docs.txt
  clinibot ingest clinic_docs.txt --batch-size 50`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 100, "Number of chunks to embed per API call")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
		successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
		errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s failed to read %s: %w", errorStyle.Render("Error:"), path, err)
	}

	chunks := rag.SplitChunks(string(data))
	if len(chunks) == 0 {
		return fmt.Errorf("%s no text chunks found in %s", errorStyle.Render("Error:"), path)
	}
	fmt.Println(stepStyle.Render(fmt.Sprintf("→ Found %d text chunks in %s", len(chunks), path)))

	embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(stepStyle.Render("→ Connecting to vector store..."))
	store, err := rag.NewMilvusStore(ctx, rag.DefaultMilvusConfig(cfg.MilvusAddress, cfg.MilvusCollection, cfg.EmbeddingDim))
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	fmt.Println(stepStyle.Render("→ Re-indexing collection..."))
	n, err := rag.IndexChunks(ctx, chunks, embedder, store, rag.IndexOptions{BatchSize: ingestBatchSize})
	if err != nil {
		return fmt.Errorf("%s ingestion failed: %w", errorStyle.Render("Error:"), err)
	}

	total, err := store.Count(ctx)
	if err != nil {
		// Count is informational only
		total = int64(n)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Ingested %d chunks (%d vectors in collection)", n, total)))
	return nil
}
