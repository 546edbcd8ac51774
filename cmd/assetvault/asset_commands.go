package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"assetvault/internal/assets"
	"assetvault/internal/config"
	"assetvault/internal/library"
	"assetvault/internal/vault"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		year       int64
		advertiser string
		niche      string
		shares     int64
		recursive  bool
	)
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Copy files into the vault and register them as assets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandImportPaths(args, recursive)
			if err != nil {
				return err
			}
			var meta vault.Metadata
			if cmd.Flags().Changed("year") {
				meta.Year = &year
			}
			if cmd.Flags().Changed("advertiser") {
				meta.Advertiser = &advertiser
			}
			if cmd.Flags().Changed("niche") {
				meta.Niche = &niche
			}
			if cmd.Flags().Changed("shares") {
				meta.Shares = &shares
			}

			return ctx.withLibrary(func(svc *library.Service) error {
				result, err := svc.Import(cmd.Context(), paths, meta)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if err := writeJSON(cmd, map[string]any{
						"imported": toAssetsJSON(result.Imported),
						"errors":   nonNilImportErrors(result.Errors),
						"skipped":  nonNilStrings(result.Skipped),
					}); err != nil {
						return err
					}
				} else {
					printImportResult(cmd, result)
				}
				if len(result.Imported) == 0 && len(result.Errors) > 0 {
					return fmt.Errorf("no files imported (%d failed)", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&year, "year", 0, "Year to record on every imported asset")
	cmd.Flags().StringVar(&advertiser, "advertiser", "", "Advertiser to record on every imported asset")
	cmd.Flags().StringVar(&niche, "niche", "", "Niche to record on every imported asset")
	cmd.Flags().Int64Var(&shares, "shares", 0, "Share count to record on every imported asset")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Import the files inside directory arguments")
	return cmd
}

// expandImportPaths resolves ~ in each argument and, when recursive, replaces
// directories with the regular files beneath them in lexical order.
func expandImportPaths(args []string, recursive bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, statErr := os.Stat(path)
		if !recursive || statErr != nil || !info.IsDir() {
			out = append(out, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return out, nil
}

func printImportResult(cmd *cobra.Command, result vault.ImportResult) {
	out := cmd.OutOrStdout()
	if len(result.Imported) > 0 {
		rows := make([][]string, 0, len(result.Imported))
		for _, a := range result.Imported {
			rows = append(rows, []string{
				strconv.FormatInt(a.ID, 10),
				a.Path,
				a.MimeType,
				humanize.IBytes(uint64(a.Size)),
			})
		}
		fmt.Fprint(out, renderTable(out, []string{"ID", "Path", "Type", "Size"}, rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
	}
	if len(result.Errors) > 0 {
		rows := make([][]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			rows = append(rows, []string{e.FilePath, e.Reason})
		}
		fmt.Fprint(out, renderTable(out, []string{"File", "Error"}, rows, nil))
	}
	fmt.Fprintf(out, "Imported %d, failed %d, skipped %d\n", len(result.Imported), len(result.Errors), len(result.Skipped))
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		year             int64
		advertiser       string
		niche            string
		sharesMin        int64
		sharesMax        int64
		search           string
		mastersOnly      bool
		missingThumbnail bool
		sortBy           string
		order            string
		limit            int
		offset           int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := assets.ParseSortField(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort field %q", sortBy)
			}
			dir, ok := assets.ParseSortOrder(order)
			if !ok {
				return fmt.Errorf("unknown sort order %q (use asc or desc)", order)
			}
			filter := assets.Filter{
				Advertiser:       advertiser,
				Niche:            niche,
				Search:           search,
				MastersOnly:      mastersOnly,
				MissingThumbnail: missingThumbnail,
				SortBy:           field,
				SortOrder:        dir,
				Limit:            limit,
				Offset:           offset,
			}
			if cmd.Flags().Changed("year") {
				filter.Year = &year
			}
			if cmd.Flags().Changed("shares-min") {
				filter.SharesMin = &sharesMin
			}
			if cmd.Flags().Changed("shares-max") {
				filter.SharesMax = &sharesMax
			}

			return ctx.withLibrary(func(svc *library.Service) error {
				list, err := svc.GetAssets(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toAssetsJSON(list))
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No assets found")
					return nil
				}
				fmt.Fprint(out, renderTable(out, assetHeaders, assetRows(list), assetAligns))
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&year, "year", 0, "Only assets from this year")
	flags.StringVar(&advertiser, "advertiser", "", "Only assets for this advertiser")
	flags.StringVar(&niche, "niche", "", "Only assets in this niche")
	flags.Int64Var(&sharesMin, "shares-min", 0, "Minimum share count")
	flags.Int64Var(&sharesMax, "shares-max", 0, "Maximum share count")
	flags.StringVarP(&search, "search", "s", "", "Full-text search over advertiser and niche")
	flags.BoolVar(&mastersOnly, "masters-only", false, "Hide versions")
	flags.BoolVar(&missingThumbnail, "missing-thumbnail", false, "Only assets without a thumbnail")
	flags.StringVar(&sortBy, "sort", "createdAt", "Sort by createdAt, year, advertiser, niche, shares, or versionNo")
	flags.StringVar(&order, "order", "desc", "Sort order: asc or desc")
	flags.IntVar(&limit, "limit", 0, "Maximum number of rows (0 for all)")
	flags.IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

var (
	assetHeaders = []string{"ID", "Master", "Ver", "Path", "Year", "Advertiser", "Niche", "Shares", "Size", "Thumb"}
	assetAligns  = []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
)

func assetRows(list []*assets.Asset) [][]string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			formatOptionalInt(a.MasterID),
			strconv.FormatInt(a.VersionNo, 10),
			a.Path,
			formatOptionalInt(a.Year),
			formatOptionalString(a.Advertiser),
			formatOptionalString(a.Niche),
			formatOptionalInt(a.Shares),
			humanize.IBytes(uint64(a.Size)),
			yesNo(a.ThumbnailPath != nil),
		})
	}
	return rows
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one asset with its group and custom values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				asset, err := svc.GetAsset(cmd.Context(), id)
				if err != nil {
					return err
				}
				group, err := svc.GetAssetVersions(cmd.Context(), id)
				if err != nil {
					return err
				}
				values, err := svc.CustomValues(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					custom := make([]customValueJSON, 0, len(values))
					for _, v := range values {
						custom = append(custom, customValueJSON{FieldID: v.FieldID, FieldName: v.FieldName, FieldType: string(v.FieldType), Value: v.Value})
					}
					return writeJSON(cmd, map[string]any{
						"asset":        toAssetJSON(asset),
						"group":        toAssetsJSON(group),
						"customValues": custom,
					})
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"ID", strconv.FormatInt(asset.ID, 10)},
					{"Path", asset.Path},
					{"Type", asset.MimeType},
					{"Size", humanize.IBytes(uint64(asset.Size))},
					{"Created", asset.CreatedAt.Local().Format("2006-01-02 15:04:05")},
					{"Year", formatOptionalInt(asset.Year)},
					{"Advertiser", formatOptionalString(asset.Advertiser)},
					{"Niche", formatOptionalString(asset.Niche)},
					{"Shares", formatOptionalInt(asset.Shares)},
					{"Master", formatOptionalInt(asset.MasterID)},
					{"Version", strconv.FormatInt(asset.VersionNo, 10)},
					{"Thumbnail", formatOptionalString(asset.ThumbnailPath)},
				}
				for _, v := range values {
					rows = append(rows, []string{v.FieldName, formatOptionalString(v.Value)})
				}
				fmt.Fprint(out, renderTable(out, []string{"Field", "Value"}, rows, nil))
				if len(group) > 1 {
					fmt.Fprintln(out, "Group:")
					fmt.Fprint(out, renderTable(out, assetHeaders, assetRows(group), assetAligns))
				}
				return nil
			})
		},
	}
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var sets []string
	var clears []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an asset's year, advertiser, niche, or shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := patchFromFlags(cmd, sets, clears)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				asset, err := svc.UpdateAsset(cmd.Context(), id, patch)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toAssetJSON(asset))
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(out, assetHeaders, assetRows([]*assets.Asset{asset}), assetAligns))
				return nil
			})
		},
	}
	addPatchFlags(cmd, &sets, &clears)
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an asset record",
		Long: "Delete an asset record. A master that still has versions cannot be deleted;\n" +
			"promote or detach its versions first. With --purge the vault file and\n" +
			"thumbnail are removed too.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				if err := svc.DeleteAsset(cmd.Context(), id, purge); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"deleted": id, "purged": purge})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted asset %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "Also remove the vault file and thumbnail")
	return cmd
}

func newBulkUpdateCommand(ctx *commandContext) *cobra.Command {
	var ids []string
	var sets []string
	var clears []string
	cmd := &cobra.Command{
		Use:   "bulk-update [id...]",
		Short: "Apply one change to many assets",
		Long: "Apply one change to many assets. Each id is updated on its own: ids that\n" +
			"fail are reported and the rest still apply. The command exits non-zero\n" +
			"when any id failed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseIDs(append(append([]string{}, ids...), args...))
			if err != nil {
				return err
			}
			if len(parsed) == 0 {
				return errors.New("no asset ids given")
			}
			patch, err := patchFromFlags(cmd, sets, clears)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				result, err := svc.BulkUpdateAssets(cmd.Context(), parsed, patch)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if err := writeJSON(cmd, toBulkResultJSON(result)); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Updated %d of %d assets\n", result.UpdatedCount, len(parsed))
					if len(result.Errors) > 0 {
						rows := make([][]string, 0, len(result.Errors))
						for _, e := range result.Errors {
							rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.Reason})
						}
						fmt.Fprint(out, renderTable(out, []string{"ID", "Error"}, rows, []columnAlignment{alignRight, alignLeft}))
					}
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("partial failure: %d asset(s) not updated", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Comma-separated asset ids")
	addPatchFlags(cmd, &sets, &clears)
	return cmd
}

func addPatchFlags(cmd *cobra.Command, sets, clears *[]string) {
	fields := strings.Join(assets.PatchFields, ", ")
	cmd.Flags().StringArrayVar(sets, "set", nil, "Field assignment key=value ("+fields+")")
	cmd.Flags().StringSliceVar(clears, "clear", nil, "Fields to clear ("+fields+")")
}

// patchFromFlags turns --set/--clear into a patch. Unknown keys are reported
// on stderr and otherwise ignored.
func patchFromFlags(cmd *cobra.Command, sets, clears []string) (assets.Patch, error) {
	values := make(map[string]string, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return assets.Patch{}, fmt.Errorf("invalid --set %q (want key=value)", kv)
		}
		values[strings.TrimSpace(key)] = value
	}
	patch, ignored, err := assets.PatchFromValues(values, clears)
	if len(ignored) > 0 {
		sort.Strings(ignored)
		fmt.Fprintf(cmd.ErrOrStderr(), "Ignoring unknown fields: %s\n", strings.Join(ignored, ", "))
	}
	return patch, err
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func formatOptionalString(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func nonNilImportErrors(errs []vault.ImportError) []vault.ImportError {
	if errs == nil {
		return []vault.ImportError{}
	}
	return errs
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
