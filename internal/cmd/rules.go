package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/zxg-sec/blfilter/internal/errors"
	"github.com/zxg-sec/blfilter/internal/ruleset"
	tuirules "github.com/zxg-sec/blfilter/internal/tui/rules"
	"github.com/zxg-sec/blfilter/internal/util"
)

func newRulesCommand(e *env) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the blacklist rules",
		Long: `Manage the blacklist rules.

Without arguments, opens an interactive menu to view, add, remove and change
rules. Use the subcommands for scripted changes. Every change is saved to the
rule store immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runRulesInteractive(cmd)
		},
	}

	rulesCmd.AddCommand(newRulesListCommand(e))
	rulesCmd.AddCommand(newRulesAddCommand(e))
	rulesCmd.AddCommand(newRulesRemoveCommand(e))
	rulesCmd.AddCommand(newRulesEditCommand(e))

	return rulesCmd
}

func newRulesListCommand(e *env) *cobra.Command {
	var match string

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the rules with their indices",
		Example: `  blfilter rules list
  blfilter rules list --match '*.gov.cn'
  blfilter rules list --match '192.168.*'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runRulesList(cmd, match)
		},
	}
	listCmd.Flags().StringVarP(&match, "match", "m", "", "only show rules matching this glob pattern")

	return listCmd
}

func newRulesAddCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <rule>[,<rule>...]",
		Short: "Add one or more rules",
		Long: `Add one or more rules. Rules may be given as separate arguments or as a
comma-separated list; a trailing ';' is ignored. Duplicates are skipped and
invalid rules are reported without stopping the rest of the batch.`,
		Example: `  blfilter rules add 127.0.0.1
  blfilter rules add '192.168.*.*,10.0.0.0/8,*.gov.cn'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runRulesAdd(cmd, args)
		},
	}
}

func newRulesRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <index>[,<index>...]",
		Aliases: []string{"rm"},
		Short:   "Remove rules by index",
		Long: `Remove rules by their 1-based index as shown by 'blfilter rules list'.
All indices refer to the list before the removal.`,
		Example: `  blfilter rules remove 3
  blfilter rules remove 1,4,5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runRulesRemove(cmd, args)
		},
	}
}

func newRulesEditCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "edit <index> <rule>",
		Short:   "Replace the rule at an index",
		Example: `  blfilter rules edit 2 172.16.0.0/12`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runRulesEdit(cmd, args[0], args[1])
		},
	}
}

func (e *env) loadRules() (*ruleset.Store, *ruleset.Set, error) {
	store := e.store()
	set, err := store.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load rules")
	}
	return store, set, nil
}

func (e *env) runRulesInteractive(cmd *cobra.Command) error {
	if !isTerminal() {
		return fmt.Errorf("interactive rule management needs a terminal\nUse 'blfilter rules list|add|remove|edit' instead")
	}
	store, set, err := e.loadRules()
	if err != nil {
		return err
	}
	return tuirules.Run(set, store, e.logger)
}

func (e *env) runRulesList(cmd *cobra.Command, match string) error {
	_, set, err := e.loadRules()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if match == "" {
		_, err := io.WriteString(out, tuirules.RenderList(set.Rules()))
		return err
	}

	g, err := glob.Compile(match)
	if err != nil {
		return fmt.Errorf("invalid --match pattern %q: %w", match, err)
	}

	fmt.Fprintf(out, "Rules matching %s:\n", match)
	shown := 0
	for i, r := range set.Rules() {
		if !g.Match(r) {
			continue
		}
		fmt.Fprintln(out, tuirules.FormatRule(i+1, r))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "No rules")
	}
	return nil
}

func (e *env) runRulesAdd(cmd *cobra.Command, args []string) error {
	store, set, err := e.loadRules()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	res := set.Add(util.SplitEntries(strings.Join(args, ","))...)
	if res.Changed() {
		if err := store.Save(set); err != nil {
			return errors.Wrap(err, "failed to save rules")
		}
		e.logger.Info("rules added", "count", len(res.Added))
	}

	for _, r := range res.Duplicates {
		fmt.Fprintf(out, "Rule %s already exists, skipped.\n", r)
	}
	if len(res.Added) > 0 {
		fmt.Fprintln(out, "Added rules:")
		for _, r := range res.Added {
			fmt.Fprintf(out, "  %s\n", r)
		}
	}
	if len(res.Invalid) > 0 {
		fmt.Fprintln(out, "Invalid rules, not added:")
		rejected := make([]error, 0, len(res.Invalid))
		for _, r := range res.Invalid {
			fmt.Fprintf(out, "  %s (%s)\n", r.Rule, errors.Reason(r.Err))
			rejected = append(rejected, r.Err)
		}
		return errors.NewPartialError(fmt.Sprintf("%d invalid rule(s) not added", len(rejected)), rejected...)
	}
	return nil
}

func (e *env) runRulesRemove(cmd *cobra.Command, args []string) error {
	store, set, err := e.loadRules()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	indices, bad := util.ParseIndices(util.SplitEntries(strings.Join(args, ",")))
	size := set.Len()
	res := set.Remove(indices...)
	if res.Changed() {
		if err := store.Save(set); err != nil {
			return errors.Wrap(err, "failed to save rules")
		}
		e.logger.Info("rules removed", "count", len(res.Removed))
	}

	if len(res.Removed) > 0 {
		fmt.Fprintln(out, "Removed rules:")
		for _, r := range res.Removed {
			fmt.Fprintf(out, "  %s\n", r)
		}
	}
	if len(res.Invalid)+len(bad) > 0 {
		fmt.Fprintln(out, "Invalid indices, nothing removed for:")
		var rejected []error
		for _, idx := range res.Invalid {
			fmt.Fprintf(out, "  %d\n", idx)
			rejected = append(rejected, errors.NewIndexError(idx, size))
		}
		for _, b := range bad {
			fmt.Fprintf(out, "  %s\n", b)
			rejected = append(rejected, errors.NewIndexEntryError(b))
		}
		return errors.NewPartialError(fmt.Sprintf("%d invalid index(es)", len(rejected)), rejected...)
	}
	return nil
}

func (e *env) runRulesEdit(cmd *cobra.Command, indexArg, candidate string) error {
	index, err := strconv.Atoi(strings.TrimSpace(indexArg))
	if err != nil {
		return errors.NewIndexEntryError(indexArg)
	}

	store, set, err := e.loadRules()
	if err != nil {
		return err
	}

	res, err := set.Edit(index, candidate)
	if err != nil {
		return err
	}
	if res.Changed() {
		if err := store.Save(set); err != nil {
			return errors.Wrap(err, "failed to save rules")
		}
		e.logger.WithRule(res.New).Info("rule changed", "old", res.Old)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Changed rule: %s -> %s\n", res.Old, res.New)
	return nil
}
