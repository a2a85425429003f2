package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lotas/tabdedupe/internal/controller"
	"github.com/lotas/tabdedupe/internal/executor"
	"github.com/lotas/tabdedupe/internal/planner"
	"github.com/lotas/tabdedupe/internal/types"
	"github.com/spf13/cobra"
)

func operationList() string {
	names := make([]string, 0, len(types.Operations))
	for _, op := range types.Operations {
		names = append(names, string(op))
	}
	return strings.Join(names, ", ")
}

var planCmd = &cobra.Command{
	Use:   "plan <operation>",
	Short: "Show what an action would close and move, without doing it",
	Long: "Compute a plan and list the affected tabs.\n\nOperations: " + operationList() + `.

Per-group operations take --key; keep-only and close-tab take --tab;
merge-window takes --source. Moves go to --target, or the current window.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var applyCmd = &cobra.Command{
	Use:   "apply <operation>",
	Short: "Plan and execute an action",
	Long:  "Plan and execute an action. Takes the same flags as plan.\n\nOperations: " + operationList() + ".",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var (
	actKey    string
	actTab    int
	actTarget int
	actSource int
	actMode   string
)

func init() {
	for _, c := range []*cobra.Command{planCmd, applyCmd} {
		c.Flags().StringVar(&actKey, "key", "", "group key, as printed by groups")
		c.Flags().IntVar(&actTab, "tab", 0, "tab ID")
		c.Flags().IntVar(&actTarget, "target", 0, "destination window ID (default: current window)")
		c.Flags().IntVar(&actSource, "source", 0, "source window ID for merge-window")
		c.Flags().StringVar(&actMode, "mode", "", "match mode used to build groups (default from preferences)")
		rootCmd.AddCommand(c)
	}
}

// prepareAction opens a session, refreshes with the requested mode and
// returns the parsed request.
func prepareAction(cmd *cobra.Command, opName string) (*session, controller.ActionRequest, error) {
	op, err := types.ParseOperation(opName)
	if err != nil {
		return nil, controller.ActionRequest{}, fmt.Errorf("%w (known: %s)", err, operationList())
	}
	req := controller.ActionRequest{
		Op:             op,
		Key:            actKey,
		TabID:          actTab,
		TargetWindowID: actTarget,
		SourceWindowID: actSource,
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return nil, req, err
	}
	mode, _, err := resolveModes(s.ctrl.Preferences(), actMode, "")
	if err != nil {
		s.close()
		return nil, req, err
	}
	if err := s.waitForBrowser(cmd.Context()); err != nil {
		s.close()
		return nil, req, err
	}
	if _, err := s.ctrl.RefreshMode(cmd.Context(), mode); err != nil {
		s.close()
		return nil, req, err
	}
	return s, req, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	s, req, err := prepareAction(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	plan, err := s.ctrl.Plan(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), planner.FormatDryRun(plan, s.ctrl.Snapshot().Tabs))
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	s, req, err := prepareAction(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.ctrl.Apply(cmd.Context(), req)
	var partial *executor.PartialFailureError
	if err != nil && !errors.As(err, &partial) {
		return err
	}

	out := cmd.OutOrStdout()
	o := res.Outcome
	if o.NoOp {
		fmt.Fprintf(out, "%s: nothing to do\n", req.Op)
		return nil
	}
	fmt.Fprintf(out, "%s: closed %d, moved %d", req.Op, len(o.Closed), len(o.Moved))
	if res.Plan.DestinationWindowID != 0 && len(o.Moved) > 0 {
		fmt.Fprintf(out, " to window %d", res.Plan.DestinationWindowID)
	}
	fmt.Fprintln(out)
	if o.FocusError != "" {
		fmt.Fprintf(out, "could not focus window: %s\n", o.FocusError)
	}
	if len(o.Failed) > 0 {
		ids := make([]int, 0, len(o.Failed))
		for id := range o.Failed {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "  tab %d failed: %s\n", id, o.Failed[id])
		}
		return fmt.Errorf("%d of %d tabs failed", len(o.Failed), len(res.Plan.Close)+len(res.Plan.Move))
	}
	if res.PromptReview {
		fmt.Fprintf(out, "\nEnjoying tabdedupe? Leave a review: %s\n", s.ctrl.Review().URL())
	}
	return nil
}
