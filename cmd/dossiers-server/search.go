package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dossiers/dossiers/internal/search"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	patientStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

func renderResults(w io.Writer, query string, res search.Results) {
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(w, detailStyle.Render("Empty query."))
		return
	}
	sections := res.Sections()
	if len(sections) == 0 {
		fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("No results for %q.", query)))
		return
	}
	for _, s := range sections {
		fmt.Fprintln(w, sectionStyle.Render(s.Title)+" "+countStyle.Render(fmt.Sprintf("(%d)", len(s.Hits))))
		for _, h := range s.Hits {
			line := "  " + labelStyle.Render(h.Label)
			if h.Detail != "" {
				line += "  " + detailStyle.Render(h.Detail)
			}
			if h.Patient != "" && s.Category != search.CategoryPatients {
				line += "  " + patientStyle.Render(h.Patient)
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, countStyle.Render(fmt.Sprintf("%d result(s)", res.Total())))
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Run the global search from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			a, err := newApp(cfg, pool, nil, zerolog.Nop())
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			res, err := a.search.Search(ctx, query)
			if err != nil {
				return err
			}
			renderResults(cmd.OutOrStdout(), query, res)
			return nil
		},
	}
}
