package main

import (
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newSubjectsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List configured subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			subjects, err := cfg.SubjectTable()
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, subjects)
			}

			codes := make([]string, 0, len(subjects))
			for code := range subjects {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			title := cases.Title(language.Und)
			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				rows = append(rows, []string{code, subjects[code], title.String(subjects[code])})
			}
			writeRows(cmd.OutOrStdout(), []string{"Code", "Name", "Display"}, rows, nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
