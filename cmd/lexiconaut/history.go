package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/app"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/session"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/store"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/util"
	"github.com/spf13/cobra"
)

const explanationWidth = 72

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit saved names",
	}

	var starredOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := c.build(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			st := session.NewState()
			if starredOnly {
				container.Controller.ShowStarred(st)
			} else {
				container.Controller.ShowHistory(st)
			}
			if err := container.Controller.EnsureHistory(cmd.Context(), st); err != nil {
				return err
			}

			items, _ := container.Controller.Visible(st)
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved names.")
				return nil
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
	list.Flags().BoolVar(&starredOnly, "starred", false, "show starred names only")

	star := &cobra.Command{
		Use:   "star <id>",
		Short: "Toggle the star on a saved name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.historyAction(cmd, args[0], "Toggled star on", func(ctrl *session.Controller, st *session.State) error {
				return ctrl.ToggleStar(cmd.Context(), st, args[0], session.ScopeHistory)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a saved name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.historyAction(cmd, args[0], "Deleted", func(ctrl *session.Controller, st *session.State) error {
				return ctrl.Delete(cmd.Context(), st, args[0], session.ScopeHistory)
			})
		},
	}

	var dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append names from a JSON history file to the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.build(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			src := store.NewJSONFileStore(args[0], c.logger)
			report, err := store.Migrate(cmd.Context(), src, container.Store, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "[dry run] no changes written")
			}
			fmt.Fprintf(out, "read %d, imported %d, skipped %d duplicate names, %d without a name, reassigned %d ids\n",
				report.Read, report.Imported, report.SkippedByName, report.SkippedNoName, report.AssignedNewIDs)
			return nil
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be imported without writing")

	cmd.AddCommand(list, star, del, importCmd)
	return cmd
}

func (c *cli) historyAction(cmd *cobra.Command, id, verb string, action func(*session.Controller, *session.State) error) error {
	container, err := c.build(cmd.Context(), app.Options{})
	if err != nil {
		return err
	}
	defer container.Close()

	st := session.NewState()
	if err := container.Controller.EnsureHistory(cmd.Context(), st); err != nil {
		return err
	}
	if domain.FindItem(st.History, id) < 0 {
		return fmt.Errorf("no saved name with id %s", id)
	}
	if err := action(container.Controller, st); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, id)
	return nil
}

// printItems writes one row per item: star marker, id, name, explanation.
func printItems(w io.Writer, items []domain.ResultItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tNAME\tEXPLANATION")
	for _, item := range items {
		marker := " "
		if item.Starred {
			marker = "*"
		}
		explanation := strings.Join(strings.Fields(item.Explanation), " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, item.ID, item.Name, util.TruncateString(explanation, explanationWidth))
	}
	_ = tw.Flush()
}
