package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"assetvault/internal/library"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Inspect and reshape version groups",
	}

	versionCmd.AddCommand(newVersionListCommand(ctx))
	versionCmd.AddCommand(newVersionCreateCommand(ctx))
	versionCmd.AddCommand(newVersionPromoteCommand(ctx))
	versionCmd.AddCommand(newVersionDetachCommand(ctx))
	versionCmd.AddCommand(newVersionAttachCommand(ctx))

	return versionCmd
}

func newVersionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <id>",
		Short: "List every member of the group containing an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				group, err := svc.GetAssetVersions(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toAssetsJSON(group))
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(out, assetHeaders, assetRows(group), assetAligns))
				return nil
			})
		},
	}
}

func newVersionCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <id>",
		Short: "Add a version to the group containing an asset",
		Long: "Add a version to the group containing an asset. The new version copies the\n" +
			"group master's file and metadata and takes the next version number.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				ref, err := svc.CreateVersion(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toVersionRefJSON(ref))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created version %d (asset %d) at %s\n", ref.VersionNo, ref.ID, ref.Path)
				return nil
			})
		},
	}
}

func newVersionPromoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <id>",
		Short: "Make a version the master of its group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				if err := svc.PromoteVersion(cmd.Context(), id); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"promoted": id})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Asset %d is now the master of its group\n", id)
				return nil
			})
		},
	}
}

func newVersionDetachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <id>",
		Short: "Remove a version from its group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				if err := svc.RemoveFromGroup(cmd.Context(), id); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"detached": id})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Asset %d is now a standalone master\n", id)
				return nil
			})
		},
	}
}

func newVersionAttachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <group-member-id>",
		Short: "Attach a standalone asset to another asset's group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := parseID(args[1])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(svc *library.Service) error {
				ref, err := svc.AddToGroup(cmd.Context(), id, target)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toVersionRefJSON(ref))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Attached asset %d as version %d\n", ref.ID, ref.VersionNo)
				return nil
			})
		},
	}
}
