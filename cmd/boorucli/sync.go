package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <library-id>",
		Short: "Synchronize a library against its catalog rows",
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

			lib, err := deps.libraries.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription(fmt.Sprintf("syncing %s", lib.Name)),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetWriter(c.OutOrStdout()),
			)
			stop := make(chan struct{})
			go spin(bar, stop)

			start := time.Now()
			result, err := deps.sync.Sync(ctx, lib)
			close(stop)
			_ = bar.Finish()

			if err != nil {
				return fmt.Errorf("sync library %d: %w", id, err)
			}

			fmt.Printf("\nsynced %s in %s: scanned=%s added=%s updated=%s moved=%s removed=%s excluded=%s ignored=%s tags_inherited=%s\n",
				lib.Name, time.Since(start).Round(time.Millisecond),
				humanize.Comma(int64(result.FilesScanned)),
				humanize.Comma(int64(result.Added)),
				humanize.Comma(int64(result.Updated)),
				humanize.Comma(int64(result.Moved)),
				humanize.Comma(int64(result.OrphansRemoved)),
				humanize.Comma(int64(result.Excluded)),
				humanize.Comma(int64(result.Ignored)),
				humanize.Comma(int64(result.TagsInherited)))

			for _, e := range result.Errors {
				fmt.Printf("warning: %v\n", e)
			}
			return nil
		},
	}
}

// spin advances an indeterminate progress bar while a foreground sync runs,
// since [ingest.Synchronizer] reports a final result rather than incremental
// progress.
func spin(bar *progressbar.ProgressBar, stop <-chan struct{}) {
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = bar.Add(1)
		case <-stop:
			return
		}
	}
}
