// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// secrulectl is the command-line companion of the security rule
// agent. It speaks the framed control protocol over the agent's unix
// socket.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/control"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

var socketPath string

var rootCmd = &cobra.Command{
	Use:   "secrulectl",
	Short: "Manage the per-user security rule table",
	Long:  `secrulectl adds, removes and prints the per-user access rules held by the running security rule agent`,
}

var addCmd = &cobra.Command{
	Use:   "add <uid> <rule>",
	Short: "Add a rule for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := parseUID(args[0])
		if err != nil {
			return err
		}

		status, err := client().AddRule(uid, args[1])
		if err != nil {
			return err
		}
		if status != control.StatusOK {
			return fmt.Errorf("agent rejected add: %s", status)
		}

		fmt.Printf("Rule added for uid %d\n", uid)
		return nil
	},
}

var rmvCmd = &cobra.Command{
	Use:   "rmv <uid> <rule>",
	Short: "Remove an exact (uid, rule) pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := parseUID(args[0])
		if err != nil {
			return err
		}

		status, err := client().RemoveRule(uid, args[1])
		if err != nil {
			return err
		}
		switch status {
		case control.StatusOK:
			fmt.Printf("Rule removed for uid %d\n", uid)
			return nil
		case control.StatusNotFound:
			return fmt.Errorf("no such rule for uid %d", uid)
		default:
			return fmt.Errorf("agent rejected remove: %s", status)
		}
	},
}

var printCmd = &cobra.Command{
	Use:   "print [uid]",
	Short: "Print stored rules, optionally for one user",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client()

		if len(args) == 0 {
			dump, err := c.ReadAll()
			if err != nil {
				return err
			}
			os.Stdout.Write(dump)
			return nil
		}

		uid, err := parseUID(args[0])
		if err != nil {
			return err
		}

		status, dump, err := c.ReadRules(uid)
		if err != nil {
			return err
		}
		if status != control.StatusOK && status != control.StatusTruncated {
			return fmt.Errorf("agent rejected read: %s", status)
		}

		os.Stdout.Write(dump)
		if status == control.StatusTruncated {
			fmt.Fprintln(os.Stderr, "warning: dump truncated, more rules exist")
		}
		return nil
	},
}

var manCmd = &cobra.Command{
	Use:   "man",
	Short: "Describe the rule control protocol",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(`The agent keeps an in-memory table of (uid, rule) records, bounded
at a configured capacity. Rules are plain text up to 255 bytes with no
interior NUL.

  add <uid> <rule>   register a rule for the user
  rmv <uid> <rule>   remove the exact pair; a miss is reported
  print [uid]        dump all rules, or only the given user's

The uid 4294967295 is reserved as the all-users read filter and cannot
own rules. Rules are not persisted; the table is rebuilt on every
agent restart.
`)
	},
}

func client() *control.Client {
	return control.NewClient(socketPath)
}

func parseUID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("uid %q is not a 32-bit unsigned integer", s)
	}
	if uint32(v) == rules.AllUsers || uint32(v) == rules.LegacyOwner {
		return 0, fmt.Errorf("uid %d is reserved", v)
	}
	return uint32(v), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "/run/secrules/control.sock", "Control socket path")
	rootCmd.AddCommand(addCmd, rmvCmd, printCmd, manCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
