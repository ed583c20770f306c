package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aira-hq/hubclient/pkg/hub"
)

func newRulesCmd(ra *rootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage automation rules",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List rules",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rules, err := ra.app.Hub().ListRules(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rules)
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one rule",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := ra.app.Hub().GetRule(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), r)
			},
		},
		newRuleCreateCmd(ra),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a rule",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := ra.app.Hub().DeleteRule(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rule %s deleted\n", args[0])
				return nil
			},
		},
		newRuleStatusCmd(ra, "pause", hub.RuleInactive),
		newRuleStatusCmd(ra, "resume", hub.RuleActive),
	)
	return cmd
}

func newRuleCreateCmd(ra *rootArgs) *cobra.Command {
	var in hub.RuleInput
	cmd := &cobra.Command{
		Use:   "create TEXT",
		Short: "Create a rule from natural language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.RawText = args[0]
			r, err := ra.app.Hub().CreateRule(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringSliceVar(&in.ChatIDs, "chat", nil, "Target chat id (repeatable)")
	cmd.Flags().StringVar(&in.TriggerTime, "at", "", "Schedule time in UTC, HH:MM")
	cmd.Flags().IntVar(&in.Interval, "every-days", 0, "Schedule interval in days")
	return cmd
}

func newRuleStatusCmd(ra *rootArgs, verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: fmt.Sprintf("Set a rule %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ra.app.Hub().SetRuleStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
}
