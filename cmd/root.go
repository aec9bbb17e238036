package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clinibot",
	Short: "CliniBot - RAG chat assistant for a physical therapy clinic",
	Long: `CliniBot answers patient questions grounded in the clinic's own documents.

It ingests reference material into a vector store, retrieves relevant
passages per question, and generates answers constrained by a clinical
safety persona.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
