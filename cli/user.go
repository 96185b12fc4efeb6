package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
	"github.com/aklyachkin/usrgrp/internal/policy"
	"github.com/aklyachkin/usrgrp/internal/privcmd"
	"github.com/aklyachkin/usrgrp/internal/search"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local user accounts",
	}
	cmd.AddCommand(userListCmd())
	cmd.AddCommand(userAddCmd())
	cmd.AddCommand(userDelCmd())
	cmd.AddCommand(userModifyCmd())
	cmd.AddCommand(userPasswdCmd())
	return cmd
}

// userListCmd lists users with the same filter pipeline the console uses.
func userListCmd() *cobra.Command {
	var (
		filter string
		query  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Example: `  usrgrp user list --filter regular
  usrgrp user list --query bob -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := sysacct.NewSource().ListUsers()
			if err != nil {
				return fmt.Errorf("listing users: %w", err)
			}
			st := filterconf.Settings{Users: filter}
			visible := search.VisibleUsers(users, st, query, true)

			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), visible)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "UID\tNAME\tFULL NAME\tHOME\tSHELL\tFLAGS")
			for _, u := range visible {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					u.UID, u.Name, u.Gecos, u.Home, u.Shell, userFlags(u))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "show only \"regular\" or \"system\" accounts")
	cmd.Flags().StringVar(&query, "query", "", "substring match over name, full name, home, shell and ids")
	return cmd
}

// userFlags is the compact state column: locked, no password, expired,
// missing home, non-login shell.
func userFlags(u sysacct.User) string {
	var f []byte
	if u.Locked {
		f = append(f, 'L')
	}
	if u.NoPassword {
		f = append(f, 'P')
	}
	if u.Expired {
		f = append(f, 'E')
	}
	if u.HomeMissing {
		f = append(f, 'H')
	}
	if search.InactiveShell(u.Shell) {
		f = append(f, '!')
	}
	return string(f)
}

func userAddCmd() *cobra.Command {
	var (
		noHome     bool
		admin      bool
		withPasswd bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user account",
		Example: `  usrgrp user add carol
  usrgrp user add carol --admin --password`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			password := ""
			if withPasswd {
				p, err := readNewPassword()
				if err != nil {
					return err
				}
				password = p
			}
			err := withWriter(func(r *privcmd.Runner) error {
				if err := r.CreateUser(name, !noHome); err != nil {
					return err
				}
				if password != "" {
					if err := r.SetPassword(name, password); err != nil {
						return err
					}
				}
				if admin {
					return r.AddUserToGroup(name, policy.AdminGroup())
				}
				return nil
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noHome, "no-home", false, "do not create a home directory")
	cmd.Flags().BoolVar(&admin, "admin", false, "add the user to the "+policy.AdminGroup()+" group")
	cmd.Flags().BoolVar(&withPasswd, "password", false, "prompt for an initial password")
	return cmd
}

func userDelCmd() *cobra.Command {
	var removeHome bool
	cmd := &cobra.Command{
		Use:   "del <name>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			u, err := lookupUser(name)
			if err != nil {
				return err
			}
			if !policy.UserDeleteAllowed(u.UID) {
				return fmt.Errorf("%s", policy.UserDeleteDenial(u.UID))
			}
			err = withWriter(func(r *privcmd.Runner) error {
				return r.DeleteUser(name, removeHome)
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&removeHome, "remove-home", false, "also remove the home directory and mail spool")
	return cmd
}

func userModifyCmd() *cobra.Command {
	var (
		login    string
		fullname string
		shell    string
	)
	cmd := &cobra.Command{
		Use:   "modify <name>",
		Short: "Change login name, full name or shell",
		Example: `  usrgrp user modify bob --shell /bin/zsh
  usrgrp user modify bob --login robert --fullname "Robert T."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if login == "" && !cmd.Flags().Changed("fullname") && shell == "" {
				return fmt.Errorf("nothing to change: pass --login, --fullname or --shell")
			}
			err := withWriter(func(r *privcmd.Runner) error {
				if cmd.Flags().Changed("fullname") {
					if err := r.ChangeFullname(name, fullname); err != nil {
						return err
					}
				}
				if shell != "" {
					if err := r.ChangeShell(name, shell); err != nil {
						return err
					}
				}
				if login != "" {
					return r.ChangeUsername(name, login)
				}
				return nil
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s updated\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "new login name")
	cmd.Flags().StringVar(&fullname, "fullname", "", "new full name (GECOS)")
	cmd.Flags().StringVar(&shell, "shell", "", "new login shell")
	return cmd
}

func userPasswdCmd() *cobra.Command {
	var expire bool
	cmd := &cobra.Command{
		Use:   "passwd <name>",
		Short: "Set a password, or force a change at next login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if expire {
				err := withWriter(func(r *privcmd.Runner) error {
					return r.ExpirePassword(name)
				})
				if err != nil {
					return handleErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password of %s expired; change forced at next login\n", name)
				return nil
			}
			password, err := readNewPassword()
			if err != nil {
				return err
			}
			err = withWriter(func(r *privcmd.Runner) error {
				return r.SetPassword(name, password)
			})
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password of %s changed\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&expire, "expire", false, "expire the current password instead of setting one")
	return cmd
}

func lookupUser(name string) (sysacct.User, error) {
	users, err := sysacct.NewSource().ListUsers()
	if err != nil {
		return sysacct.User{}, fmt.Errorf("listing users: %w", err)
	}
	for _, u := range users {
		if u.Name == name {
			return u, nil
		}
	}
	return sysacct.User{}, fmt.Errorf("user %q not found", name)
}
