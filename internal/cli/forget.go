package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kh1ye/memory/internal/memory"
)

var forgetStrategy string

var forgetCmd = &cobra.Command{
	Use:   "forget [id]",
	Short: "Forget a memory by id, or evict by strategy",
	Long: `With an id, removes that memory unconditionally. Without one, runs the
retention policy: low_importance evicts memories scoring below 0.3,
old_unused evicts memories older than 30 days with fewer than 2 accesses.
Strategy eviction never drops the collection below 80% of its size.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runForget,
}

func init() {
	forgetCmd.Flags().StringVarP(&forgetStrategy, "strategy", "s", memory.StrategyLowImportance, "Eviction strategy: low_importance or old_unused")
}

func runForget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sys, closer, err := openSystem(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		m, err := sys.ForgetID(id)
		if err != nil {
			return err
		}
		return printJSON([]memory.Memory{*m})
	}

	forgotten, err := sys.Forget(forgetStrategy)
	if err != nil {
		return err
	}
	fmt.Printf("forgot %d memories\n", len(forgotten))
	return printJSON(forgotten)
}
