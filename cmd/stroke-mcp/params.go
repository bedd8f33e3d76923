package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

func (a *app) newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params <sensitivity>",
		Short: "Print the thresholds derived from a sensitivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid sensitivity %q: %w", args[0], err)
			}
			if v < 0 || v > 100 {
				return fmt.Errorf("sensitivity %d out of range [0, 100]", v)
			}
			return printJSON(cmd.OutOrStdout(), sensitivity.Derive(v).Fields())
		},
	}
}
