package main

import (
	"fmt"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/app"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/session"
	"github.com/spf13/cobra"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		req    domain.NameRequest
		save   bool
		apiKey string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate library names and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := c.build(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			st := session.NewState()
			items, err := container.Controller.Generate(cmd.Context(), st, req, apiKey)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printItems(out, items)

			if !save {
				return nil
			}
			appended, err := container.Controller.Save(cmd.Context(), st)
			if err != nil {
				return fmt.Errorf("save failed: %w", err)
			}
			fmt.Fprintf(out, "\nSaved %d new names to %s\n", appended, container.Store.Describe())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Language, "language", "l", "", "programming language (required)")
	flags.StringVarP(&req.Topic, "topic", "t", "", "library topic (required)")
	flags.StringVarP(&req.Purpose, "purpose", "p", "", "library purpose (required)")
	flags.IntVarP(&req.Count, "count", "n", constants.NameCount.Default,
		fmt.Sprintf("number of names (%d-%d)", constants.NameCount.Min, constants.NameCount.Max))
	flags.BoolVar(&save, "save", false, "append the new names to history")
	flags.StringVar(&apiKey, "api-key", "", "API key overriding the configured one")

	for _, name := range []string{"language", "topic", "purpose"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
