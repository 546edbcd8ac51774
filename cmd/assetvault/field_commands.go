package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"assetvault/internal/assets"
	"assetvault/internal/library"
)

func newFieldCommand(ctx *commandContext) *cobra.Command {
	fieldCmd := &cobra.Command{
		Use:   "field",
		Short: "Manage custom metadata fields",
	}

	fieldCmd.AddCommand(newFieldDefineCommand(ctx))
	fieldCmd.AddCommand(newFieldListCommand(ctx))
	fieldCmd.AddCommand(newFieldSetCommand(ctx))
	fieldCmd.AddCommand(newFieldRemoveCommand(ctx))

	return fieldCmd
}

func newFieldDefineCommand(ctx *commandContext) *cobra.Command {
	var fieldType string
	cmd := &cobra.Command{
		Use:   "define <name>",
		Short: "Define a custom field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := assets.ParseFieldType(fieldType)
			if !ok {
				return fmt.Errorf("unknown field type %q (use text, number, date, or boolean)", fieldType)
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				field, err := svc.DefineField(cmd.Context(), args[0], typ)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toCustomFieldJSON(*field))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Defined field %s (%s) with id %d\n", field.Name, field.Type, field.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&fieldType, "type", "t", string(assets.FieldText), "Field type: text, number, date, or boolean")
	return cmd
}

func newFieldListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(svc *library.Service) error {
				fields, err := svc.Fields(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					out := make([]customFieldJSON, 0, len(fields))
					for _, f := range fields {
						out = append(out, toCustomFieldJSON(f))
					}
					return writeJSON(cmd, out)
				}
				out := cmd.OutOrStdout()
				if len(fields) == 0 {
					fmt.Fprintln(out, "No custom fields defined")
					return nil
				}
				rows := make([][]string, 0, len(fields))
				for _, f := range fields {
					rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Name, string(f.Type)})
				}
				fmt.Fprint(out, renderTable(out, []string{"ID", "Name", "Type"}, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}
}

func newFieldSetCommand(ctx *commandContext) *cobra.Command {
	var unset bool
	cmd := &cobra.Command{
		Use:   "set <asset-id> <field-id> [value]",
		Short: "Set or clear a custom value on an asset",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			fieldID, err := parseID(args[1])
			if err != nil {
				return err
			}
			var value *string
			switch {
			case unset:
			case len(args) == 3:
				value = &args[2]
			default:
				return fmt.Errorf("a value is required unless --unset is given")
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				if err := svc.SetCustomValue(cmd.Context(), assetID, fieldID, value); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"assetId": assetID, "fieldId": fieldID, "value": value})
				}
				if value == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared field %d on asset %d\n", fieldID, assetID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Set field %d on asset %d\n", fieldID, assetID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unset, "unset", false, "Remove the value instead of setting it")
	return cmd
}

func newFieldRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <field-id>",
		Short: "Delete a custom field and all of its values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				if err := svc.DeleteField(cmd.Context(), fieldID); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"removed": fieldID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed field %d\n", fieldID)
				return nil
			})
		},
	}
}
