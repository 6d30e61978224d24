package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/auditware/invocheck/internal/docs"
	"github.com/auditware/invocheck/internal/llm"
	"github.com/auditware/invocheck/internal/rules"
	"github.com/auditware/invocheck/internal/suggest"
	"github.com/auditware/invocheck/internal/terminal"
)

func newSuggestCmd() *cobra.Command {
	var (
		suggestDocsDir string
		maxDocs        int
		suggestTimeout time.Duration
		storePath      string
		save           bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest check rules from sample invoice documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolveConfig(cmd, func(string) {})
			if err != nil {
				return err
			}

			documents, err := docs.LoadDir(suggestDocsDir)
			if err != nil {
				return err
			}

			apiKey, err := resolveAPIKey()
			if err != nil {
				return err
			}
			invoker, err := llm.NewOpenAIClient(apiKey, llm.Options{
				Model:   resolved.Model,
				BaseURL: resolved.BaseURL,
			})
			if err != nil {
				return err
			}

			suggester, err := suggest.New(invoker, maxDocs)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), suggestTimeout)
			defer cancel()

			result, err := suggester.Suggest(ctx, documents)
			if err != nil {
				return err
			}

			if result.AnalysisSummary != "" {
				fmt.Printf("%s%s%s\n\n", terminal.Color(terminal.Dim), result.AnalysisSummary, terminal.Color(terminal.Reset))
			}
			for i, sg := range result.Suggestions {
				fmt.Printf("%s%d.%s %s %s[%s]%s\n%s\n\n",
					terminal.Color(terminal.Bold), i+1, terminal.Color(terminal.Reset),
					sg.Name,
					terminal.Color(terminal.Cyan), sg.Category, terminal.Color(terminal.Reset),
					terminal.WrapText(sg.Prompt, terminal.ReportWidth()-3, "   "))
			}

			if save {
				store, err := rules.Load(storePath)
				if err != nil {
					return err
				}
				for _, sg := range result.Suggestions {
					if _, err := store.Add(sg.Name, sg.Category, sg.Prompt); err != nil {
						return err
					}
				}
				if err := store.Save(); err != nil {
					return err
				}
				fmt.Printf("Saved %d suggested rules\n", len(result.Suggestions))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&suggestDocsDir, "docs", "d", "", "Directory of sample invoice text files")
	cmd.Flags().IntVar(&maxDocs, "max", 3, "Maximum sample documents to send")
	cmd.Flags().DurationVar(&suggestTimeout, "timeout", 2*time.Minute, "Timeout for the suggestion call")
	cmd.Flags().StringVar(&storePath, "rules-file", "", "Rule store path for --save")
	cmd.Flags().BoolVar(&save, "save", false, "Append suggestions to the rule store")
	_ = cmd.MarkFlagRequired("docs")

	return cmd
}
