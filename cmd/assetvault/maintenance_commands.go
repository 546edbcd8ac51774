package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"assetvault/internal/library"
	"assetvault/internal/preflight"
)

func newThumbnailsCommand(ctx *commandContext) *cobra.Command {
	thumbsCmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Thumbnail maintenance",
	}
	thumbsCmd.AddCommand(newThumbnailsRegenerateCommand(ctx))
	return thumbsCmd
}

func newThumbnailsRegenerateCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Render thumbnails for assets that lack one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service) error {
				result, err := svc.RegenerateThumbnails(cmd.Context(), all)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{"generated": result.Generated, "failed": result.Failed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d thumbnails, %d failed\n", result.Generated, result.Failed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Re-render every asset, not only those missing a thumbnail")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"assets":        stats.Assets,
						"masters":       stats.Masters,
						"versions":      stats.Versions,
						"groups":        stats.Groups,
						"withThumbnail": stats.WithThumbnail,
						"totalBytes":    stats.TotalBytes,
					})
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Assets", humanize.Comma(int64(stats.Assets))},
					{"Masters", humanize.Comma(int64(stats.Masters))},
					{"Versions", humanize.Comma(int64(stats.Versions))},
					{"Groups with versions", humanize.Comma(int64(stats.Groups))},
					{"With thumbnail", humanize.Comma(int64(stats.WithThumbnail))},
					{"Total size", humanize.IBytes(uint64(stats.TotalBytes))},
				}
				fmt.Fprint(out, renderTable(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

type doctorCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, tools, database health, and group consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var checks []doctorCheck
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				checks = append(checks, doctorCheck{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}

			err = ctx.withLibrary(func(svc *library.Service) error {
				health, err := svc.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				dbCheck := doctorCheck{Name: "Database", Passed: health.DatabaseReadable && health.TableExists && health.IntegrityCheck && len(health.MissingColumns) == 0}
				switch {
				case health.Error != "":
					dbCheck.Detail = health.Error
				case len(health.MissingColumns) > 0:
					dbCheck.Detail = "missing columns: " + strings.Join(health.MissingColumns, ", ")
				case !health.IntegrityCheck:
					dbCheck.Detail = "integrity check failed"
				default:
					dbCheck.Detail = fmt.Sprintf("%s (schema %s, %d assets)", health.DBPath, health.SchemaVersion, health.TotalAssets)
				}
				checks = append(checks, dbCheck)

				violations, err := svc.VerifyGroups(cmd.Context())
				if err != nil {
					return err
				}
				groupCheck := doctorCheck{Name: "Version groups", Passed: len(violations) == 0, Detail: "consistent"}
				if len(violations) > 0 {
					parts := make([]string, 0, len(violations))
					for _, v := range violations {
						parts = append(parts, "asset "+strconv.FormatInt(v.AssetID, 10)+": "+v.Problem)
					}
					groupCheck.Detail = strings.Join(parts, "; ")
				}
				checks = append(checks, groupCheck)

				missing, err := svc.MissingContent(cmd.Context())
				if err != nil {
					return err
				}
				contentCheck := doctorCheck{Name: "Vault content", Passed: len(missing) == 0, Detail: "all files present"}
				if len(missing) > 0 {
					contentCheck.Detail = fmt.Sprintf("%d asset(s) missing their file", len(missing))
				}
				checks = append(checks, contentCheck)
				return nil
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, c := range checks {
				if !c.Passed {
					failed++
				}
			}
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, checks); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(checks))
				for _, c := range checks {
					status := "ok"
					if !c.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{c.Name, status, c.Detail})
				}
				fmt.Fprint(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))
			}
			if failed > 0 {
				return errors.New(strconv.Itoa(failed) + " check(s) failed")
			}
			return nil
		},
	}
}
