package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/booruoss/booru/internal/jobs"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Control derived-data jobs",
	}

	cmd.AddCommand(newJobsListCmd())
	cmd.AddCommand(newJobsStartCmd())
	cmd.AddCommand(newJobsCancelCmd())
	cmd.AddCommand(newJobsHistoryCmd())

	return cmd
}

func newJobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered jobs and any currently running",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			fmt.Println("available:")
			for _, info := range deps.engine.GetAvailableJobs() {
				fmt.Printf("  %-30s %s\n", info.Key, info.DisplayName)
			}

			active := deps.engine.GetActiveJobs()
			if len(active) == 0 {
				fmt.Println("active: none")
				return nil
			}

			fmt.Println("active:")
			for _, a := range active {
				fmt.Printf("  %-30s %s %s\n", a.Key, a.ExecutionID, a.State.ActivityText)
			}
			return nil
		},
	}
}

func newJobsStartCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "start <key>",
		Short: "Start a job by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			executionID, err := deps.engine.StartJob(ctx, args[0], jobs.Mode(mode))
			if err != nil {
				return fmt.Errorf("start job %s: %w", args[0], err)
			}

			fmt.Printf("started %s: execution %s\n", args[0], executionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(jobs.ModeMissing), "run mode: missing or all")
	return cmd
}

func newJobsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <execution-id>",
		Short: "Request cancellation of a running job execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			deps.engine.CancelJob(args[0])
			fmt.Printf("cancellation requested for %s\n", args[0])
			return nil
		},
	}
}

func newJobsHistoryCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past job executions",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			executions, total, err := deps.engine.GetJobHistory(ctx, page, pageSize)
			if err != nil {
				return fmt.Errorf("list job history: %w", err)
			}

			fmt.Printf("%d total\n", total)
			for _, e := range executions {
				status := string(e.Status)
				if e.ErrorMessage != nil {
					status += ": " + *e.ErrorMessage
				}
				fmt.Printf("  %s  %-30s %s\n", e.ID, e.JobKey, status)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")
	return cmd
}
