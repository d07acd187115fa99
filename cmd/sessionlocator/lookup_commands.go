package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sessionlocator/internal/filecache"
	"sessionlocator/internal/sessions"
)

type lookupFlags struct {
	limit   int
	refresh bool
	json    bool
}

func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "Stop scanning after this many matching files (0 = no limit)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Ignore cached listings and rescan")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output as JSON")
}

func (f *lookupFlags) options() sessions.Options {
	return sessions.Options{Limit: f.limit, ForceRefresh: f.refresh}
}

type datedFileJSON struct {
	Path string `json:"path"`
	Date string `json:"date"`
}

type sessionJSON struct {
	Date  string   `json:"date"`
	Files []string `json:"files"`
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "files <ext> [dir]",
		Short: "List files with an extension, using the cache",
		Long: "List every file under dir whose name ends in .ext. When dir is omitted the\n" +
			"directory configured for the extension is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := args[0]
			dir, err := ctx.resolveDir(ext, args[1:])
			if err != nil {
				return err
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			paths, err := cache.Get(cmd.Context(), dir, ext, filecache.GetOptions{Limit: flags.limit, ForceRefresh: flags.refresh})
			if err != nil {
				return err
			}
			if flags.json {
				return writeJSON(cmd, paths)
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	var flags lookupFlags
	var format string

	cmd := &cobra.Command{
		Use:   "find <ext> [dir]",
		Short: "List files whose names carry a valid date",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := args[0]
			dir, err := ctx.resolveDir(ext, args[1:])
			if err != nil {
				return err
			}
			formatID := strings.TrimSpace(format)
			if formatID == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				if formatID, err = cfg.DateFormat(); err != nil {
					return err
				}
			}

			return ctx.withFinder(func(finder *sessions.Finder) error {
				files, err := finder.FindDatedFiles(cmd.Context(), dir, ext, formatID, flags.options())
				if err != nil {
					return err
				}
				if flags.json {
					payload := make([]datedFileJSON, 0, len(files))
					for _, f := range files {
						payload = append(payload, datedFileJSON{Path: f.Path, Date: f.Date.Format(time.DateOnly)})
					}
					return writeJSON(cmd, payload)
				}
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					rows = append(rows, []string{f.Date.Format(time.DateOnly), f.Path})
				}
				writeRows(cmd.OutOrStdout(), []string{"Date", "Path"}, rows, nil)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Date format in file names (defaults to date_format from config)")
	return cmd
}

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var flags lookupFlags
	var ext string
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "sessions <subject>",
		Short: "List recording dates for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withFinder(func(finder *sessions.Finder) error {
				found, err := finder.SessionDates(cmd.Context(), args[0], ext, flags.options())
				if err != nil {
					return err
				}
				if flags.json {
					payload := make([]sessionJSON, 0, len(found))
					for _, s := range found {
						payload = append(payload, sessionJSON{Date: s.Date.Format(time.DateOnly), Files: s.Files})
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				if len(found) == 0 {
					fmt.Fprintf(out, "No sessions found for %s\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(found))
				for _, s := range found {
					row := []string{s.Date.Format(time.DateOnly), strconv.Itoa(len(s.Files))}
					if showFiles {
						row = append(row, strings.Join(s.Files, ", "))
					}
					rows = append(rows, row)
				}
				headers := []string{"Date", "Files"}
				if showFiles {
					headers = append(headers, "Paths")
				}
				writeRows(out, headers, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&ext, "ext", "e", "hdf", "File extension to search")
	cmd.Flags().BoolVar(&showFiles, "files", false, "Include file paths for each date")
	return cmd
}
