package main

import (
	"github.com/spf13/cobra"

	"github.com/alevsk/iamgraph/internal/builder"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a what-if binding mutation against a freshly built graph",
}

var simulateAddCmd = &cobra.Command{
	Use:   "add-binding [source] [member] [role] [resource]",
	Short: "Simulate granting a binding",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		result := queryEngine(g).SimulateBindingAddition(args[1], args[2], args[3], builder.DefaultOptions())
		return printJSON(result)
	},
}

var simulateRemoveCmd = &cobra.Command{
	Use:   "remove-binding [source] [member] [role] [resource]",
	Short: "Simulate revoking a binding",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		result := queryEngine(g).SimulateBindingRemoval(args[1], args[2], args[3], builder.DefaultOptions())
		return printJSON(result)
	},
}

var simulateRoleChangeCmd = &cobra.Command{
	Use:   "role-change [source] [member] [old-role] [new-role] [resource]",
	Short: "Simulate swapping a member's role on a resource",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		result := queryEngine(g).SimulateRoleChange(args[1], args[2], args[3], args[4], builder.DefaultOptions())
		return printJSON(result)
	},
}

func init() {
	simulateCmd.AddCommand(simulateAddCmd)
	simulateCmd.AddCommand(simulateRemoveCmd)
	simulateCmd.AddCommand(simulateRoleChangeCmd)
}
