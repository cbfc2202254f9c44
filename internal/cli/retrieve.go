package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kh1ye/memory/internal/memory"
)

var (
	retrieveTopK int
	retrieveType string
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <query>",
	Short: "Retrieve the memories most relevant to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top", "k", 5, "Number of memories to return")
	retrieveCmd.Flags().StringVarP(&retrieveType, "type", "t", "", "Restrict to a memory type (episodic, semantic, procedural)")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrieveTopK < 1 {
		return fmt.Errorf("--top must be positive")
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

	results, err := sys.Retrieve(cmd.Context(), strings.Join(args, " "), retrieveTopK, memory.Type(retrieveType))
	if err != nil {
		return err
	}
	return printJSON(results)
}
