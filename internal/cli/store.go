package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var storeContext string

var storeCmd = &cobra.Command{
	Use:   "store <text>",
	Short: "Store a new memory derived from text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStore,
}

func init() {
	storeCmd.Flags().StringVar(&storeContext, "context", "", "Context JSON attached to the memory")
}

func runStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sys, closer, err := openSystem(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var contextInfo map[string]any
	if storeContext != "" {
		if err := json.Unmarshal([]byte(storeContext), &contextInfo); err != nil {
			return fmt.Errorf("parse --context: %w", err)
		}
	}

	m, err := sys.Store(cmd.Context(), strings.Join(args, " "), contextInfo)
	if err != nil {
		return err
	}
	if m == nil {
		fmt.Println("not stored: classification confidence below threshold")
		return nil
	}
	return printJSON(m)
}
