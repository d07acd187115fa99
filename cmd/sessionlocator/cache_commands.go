package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"sessionlocator/internal/filecache"
	"sessionlocator/internal/scan"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached directory listings",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show persisted cache listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			out := cmd.OutOrStdout()
			if !cache.Persistent() {
				fmt.Fprintln(out, "Persisted cache unavailable; listings are cached in memory only")
				return nil
			}
			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Backend: %s\n", ctx.config.Cache.Backend)
			fmt.Fprintf(out, "Cache dir: %s\n", ctx.config.Paths.CacheDir)
			printListings(out, stats.Persisted)
			return nil
		},
	}
}

func printListings(out io.Writer, listings []filecache.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(out, "Cached listings: none")
		return
	}
	const stampLayout = "2006-01-02 15:04"
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		if l.Corrupt {
			rows = append(rows, []string{l.Key.Ext, l.Key.Dir, "-", "-", "corrupt"})
			continue
		}
		scanned := "unknown"
		if !l.ScannedAt.IsZero() {
			scanned = l.ScannedAt.Local().Format(stampLayout)
		}
		rows = append(rows, []string{l.Key.Ext, l.Key.Dir, strconv.Itoa(l.Count), yesNo(l.Complete), scanned})
	}
	writeRows(out,
		[]string{"Ext", "Directory", "Files", "Complete", "Scanned"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge [ext]",
		Short: "Delete persisted listings for one extension, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := ""
			if len(args) == 1 {
				ext = scan.NormalizeExt(args[0])
				if ext == "" {
					return fmt.Errorf("invalid extension %q", args[0])
				}
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			if err := cache.Purge(cmd.Context(), ext); err != nil {
				return err
			}
			target := "all extensions"
			if ext != "" {
				target = "." + ext
			}
			if !cache.Persistent() {
				return fmt.Errorf("persisted cache unavailable in %s; nothing purged for %s", ctx.config.Paths.CacheDir, target)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged cached listings for %s\n", target)
			return nil
		},
	}
}
