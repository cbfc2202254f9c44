package cli

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sys, closer, err := openSystem(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		return printJSON(sys.Statistics())
	},
}
