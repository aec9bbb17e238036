package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/restore-pt/clinibot/internal/chat"
	"github.com/restore-pt/clinibot/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask CliniBot a single question from the terminal",
	Long: `Ask a one-shot question against the ingested clinic documents.

This runs the same pipeline as the HTTP API: retrieve relevant passages,
gate them by the similarity threshold, and generate a persona-constrained
answer.

Examples:
  clinibot ask "What is the RICE method?"
  clinibot ask "How long should I ice a sprained ankle?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
		questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Italic(true)
		answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	)

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	res := p.turns.Answer(ctx, chat.Conversation{
		{Role: chat.RoleUser, Content: question},
	})

	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(res.Answer)))
	fmt.Println()

	return nil
}
