package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/workflow/schedule"
	"github.com/taskweave/taskweave/pkg/config"
)

// ScheduleCmd groups the client-side schedule commands.
func ScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and manage workflow schedules",
	}
	cmd.AddCommand(
		scheduleListCmd(),
		scheduleGetCmd(),
		scheduleSetCmd(),
		scheduleClearCmd(),
	)
	return cmd
}

func newClient(cmd *cobra.Command) (*APIClient, error) {
	return NewAPIClient(config.FromContext(commandContext(cmd)))
}

func parseWorkflowArg(args []string) (core.ID, error) {
	id, err := core.ParseID(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid workflow ID %q: %w", args[0], err)
	}
	return id, nil
}

func printInfo(cmd *cobra.Command, info *schedule.Info) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workflow:  %s (%s)\n", info.WorkflowName, info.WorkflowID)
	fmt.Fprintf(out, "Cron:      %s\n", info.Cron)
	fmt.Fprintf(out, "Timezone:  %s\n", info.Timezone)
	fmt.Fprintf(out, "Enabled:   %t\n", info.Enabled)
	if info.NextRunDescription != "" {
		fmt.Fprintf(out, "Schedule:  %s\n", info.NextRunDescription)
	}
	if info.NextRunTime != nil {
		fmt.Fprintf(out, "Next run:  %s\n", info.NextRunTime.Format("2006-01-02 15:04:05 MST"))
	}
	if info.LastRunTime != nil {
		fmt.Fprintf(out, "Last run:  %s (%s)\n",
			info.LastRunTime.Format("2006-01-02 15:04:05 MST"), info.LastRunStatus)
	}
}

func scheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			schedules, err := client.ListSchedules(commandContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(schedules) == 0 {
				fmt.Fprintln(out, "No schedules configured")
				return nil
			}
			for _, info := range schedules {
				state := "disabled"
				if info.Enabled {
					state = "enabled"
				}
				fmt.Fprintf(out, "%s  %-20s %-15s %s\n",
					info.WorkflowID, info.Cron, info.Timezone, state)
			}
			return nil
		},
	}
}

func scheduleGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <workflow-id>",
		Short: "Show the schedule of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID, err := parseWorkflowArg(args)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			info, err := client.GetSchedule(commandContext(cmd), workflowID)
			if err != nil {
				return err
			}
			printInfo(cmd, info)
			return nil
		},
	}
}

func scheduleSetCmd() *cobra.Command {
	var (
		cron     string
		timezone string
		disabled bool
	)
	cmd := &cobra.Command{
		Use:   "set <workflow-id>",
		Short: "Set the schedule of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID, err := parseWorkflowArg(args)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			info, err := client.SetSchedule(commandContext(cmd), workflowID, schedule.SetRequest{
				Cron:     cron,
				Enabled:  !disabled,
				Timezone: timezone,
			})
			if err != nil {
				return err
			}
			printInfo(cmd, info)
			return nil
		},
	}
	cmd.Flags().StringVar(&cron, "cron", "", "five-field cron expression")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone (default UTC)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "store the schedule without enabling it")
	_ = cmd.MarkFlagRequired("cron")
	return cmd
}

func scheduleClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <workflow-id>",
		Short: "Remove the schedule of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID, err := parseWorkflowArg(args)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := client.ClearSchedule(commandContext(cmd), workflowID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule cleared for workflow %s\n", workflowID)
			return nil
		},
	}
}
