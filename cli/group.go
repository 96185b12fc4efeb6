package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
	"github.com/aklyachkin/usrgrp/internal/policy"
	"github.com/aklyachkin/usrgrp/internal/privcmd"
	"github.com/aklyachkin/usrgrp/internal/search"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage local groups",
	}
	cmd.AddCommand(groupListCmd())
	cmd.AddCommand(groupAddCmd())
	cmd.AddCommand(groupDelCmd())
	cmd.AddCommand(groupRenameCmd())
	cmd.AddCommand(groupMembersCmd())
	return cmd
}

func groupListCmd() *cobra.Command {
	var (
		filter string
		query  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := sysacct.NewSource().ListGroups()
			if err != nil {
				return fmt.Errorf("listing groups: %w", err)
			}
			st := filterconf.Settings{Groups: filter}
			visible := search.VisibleGroups(groups, st, query, true)

			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), visible)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GID\tNAME\tMEMBERS")
			for _, g := range visible {
				fmt.Fprintf(w, "%d\t%s\t%s\n", g.GID, g.Name, strings.Join(g.Members, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "show only \"regular\" or \"system\" groups")
	cmd.Flags().StringVar(&query, "query", "", "substring match over name, gid and member names")
	return cmd
}

func groupAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			err := withWriter(func(r *privcmd.Runner) error {
				return r.CreateGroup(name)
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group %s created\n", name)
			return nil
		},
	}
}

func groupDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <name>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			g, err := lookupGroup(name)
			if err != nil {
				return err
			}
			if policy.SystemGroup(g.GID) {
				return fmt.Errorf("group %s (gid %d) is a system group and cannot be deleted", g.Name, g.GID)
			}
			err = withWriter(func(r *privcmd.Runner) error {
				return r.DeleteGroup(name)
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group %s deleted\n", name)
			return nil
		},
	}
}

func groupRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName, newName := args[0], args[1]
			g, err := lookupGroup(oldName)
			if err != nil {
				return err
			}
			if policy.SystemGroup(g.GID) {
				return fmt.Errorf("group %s (gid %d) is a system group and cannot be renamed", g.Name, g.GID)
			}
			err = withWriter(func(r *privcmd.Runner) error {
				return r.RenameGroup(oldName, newName)
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group %s renamed to %s\n", oldName, newName)
			return nil
		},
	}
}

func groupMembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage group membership",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <group> <user>...",
		Short: "Add users to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, users := args[0], args[1:]
			err := withWriter(func(r *privcmd.Runner) error {
				for _, u := range users {
					if err := r.AddUserToGroup(u, group); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d member(s) to %s\n", len(users), group)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <group> <user>...",
		Short: "Remove users from a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, users := args[0], args[1:]
			err := withWriter(func(r *privcmd.Runner) error {
				for _, u := range users {
					if err := r.RemoveUserFromGroup(u, group); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d member(s) from %s\n", len(users), group)
			return nil
		},
	})
	return cmd
}

func lookupGroup(name string) (sysacct.Group, error) {
	groups, err := sysacct.NewSource().ListGroups()
	if err != nil {
		return sysacct.Group{}, fmt.Errorf("listing groups: %w", err)
	}
	for _, g := range groups {
		if g.Name == name {
			return g, nil
		}
	}
	return sysacct.Group{}, fmt.Errorf("group %q not found", name)
}
