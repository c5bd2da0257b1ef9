package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage configured library roots",
	}

	cmd.AddCommand(newLibraryAddCmd())
	cmd.AddCommand(newLibraryListCmd())
	cmd.AddCommand(newLibraryRemoveCmd())

	return cmd
}

func newLibraryAddCmd() *cobra.Command {
	var (
		name         string
		path         string
		scanInterval int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new library root",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			lib, err := deps.libraries.Create(ctx, name, path, scanInterval)
			if err != nil {
				return fmt.Errorf("create library: %w", err)
			}

			fmt.Printf("library %d created: %s (%s)\n", lib.ID, lib.Name, lib.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the library")
	cmd.Flags().StringVar(&path, "path", "", "absolute path to the library root")
	cmd.Flags().IntVar(&scanInterval, "scan-interval-hours", 24, "hours between scheduled scans")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newLibraryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured libraries",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			libs, err := deps.libraries.List(ctx)
			if err != nil {
				return fmt.Errorf("list libraries: %w", err)
			}

			if len(libs) == 0 {
				fmt.Println("no libraries configured")
				return nil
			}

			for _, lib := range libs {
				fmt.Printf("%d\t%s\t%s\t%dh\n", lib.ID, lib.Name, lib.Path, lib.ScanIntervalHours)
			}
			return nil
		},
	}
}

func newLibraryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a library and cascade-delete its posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			deps, err := newDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := deps.libraries.Delete(ctx, id); err != nil {
				return fmt.Errorf("remove library: %w", err)
			}

			fmt.Printf("library %d removed\n", id)
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
