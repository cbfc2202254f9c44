package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var updateMode string

var updateCmd = &cobra.Command{
	Use:   "update <id> <new info>",
	Short: "Update an existing memory with new information",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateMode, "mode", "m", "merge", "Update mode: merge, replace, or refine")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	switch updateMode {
	case "merge", "replace", "refine":
	default:
		return fmt.Errorf("mode must be merge, replace, or refine")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sys, closer, err := openSystem(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	m, err := sys.Update(cmd.Context(), id, strings.Join(args[1:], " "), updateMode)
	if err != nil {
		return err
	}
	return printJSON(m)
}
