package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/rules"
	"github.com/auditware/invocheck/internal/terminal"
)

func newRulesCmd() *cobra.Command {
	var (
		storePath string
		name      string
		category  string
		prompt    string
	)

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the check rule store",
	}
	rulesCmd.PersistentFlags().StringVar(&storePath, "rules-file", "",
		"Rule store path (default: rules.yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all rules",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := rules.Load(storePath)
			if err != nil {
				return err
			}
			for _, r := range store.List() {
				fmt.Printf("%s%s%s  %s[%s]%s %s\n",
					terminal.Color(terminal.Bold), r.ID, terminal.Color(terminal.Reset),
					terminal.Color(terminal.Cyan), r.Category, terminal.Color(terminal.Reset),
					r.Name)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule to the store",
		RunE: func(_ *cobra.Command, _ []string) error {
			cat, err := domain.ParseCategory(category)
			if err != nil {
				return err
			}
			store, err := rules.Load(storePath)
			if err != nil {
				return err
			}
			r, err := store.Add(name, cat, prompt)
			if err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Printf("Added rule %s\n", r.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Rule name")
	addCmd.Flags().StringVar(&category, "category", "", "Rule category: date, amount, format, approval, other")
	addCmd.Flags().StringVar(&prompt, "prompt", "", "Check instructions for the model")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("category")
	_ = addCmd.MarkFlagRequired("prompt")

	updateCmd := &cobra.Command{
		Use:   "update <rule-id>",
		Short: "Update a rule in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var cat domain.Category
			if category != "" {
				parsed, err := domain.ParseCategory(category)
				if err != nil {
					return err
				}
				cat = parsed
			}
			store, err := rules.Load(storePath)
			if err != nil {
				return err
			}
			if err := store.Update(args[0], name, cat, prompt); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Printf("Updated rule %s\n", args[0])
			return nil
		},
	}
	updateCmd.Flags().StringVar(&name, "name", "", "New rule name")
	updateCmd.Flags().StringVar(&category, "category", "", "New rule category")
	updateCmd.Flags().StringVar(&prompt, "prompt", "", "New check instructions")

	removeCmd := &cobra.Command{
		Use:   "remove <rule-id>",
		Short: "Remove a rule from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := rules.Load(storePath)
			if err != nil {
				return err
			}
			if !store.Remove(args[0]) {
				return fmt.Errorf("unknown rule id %q", args[0])
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Printf("Removed rule %s\n", args[0])
			return nil
		},
	}

	rulesCmd.AddCommand(listCmd, addCmd, updateCmd, removeCmd)
	return rulesCmd
}
