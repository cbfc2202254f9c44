package cli

import (
	"github.com/spf13/cobra"

	"github.com/kh1ye/memory/internal/memory"
)

var (
	exportFormat   string
	exportPatterns bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collection as JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", memory.FormatSemantic, "Export format: structured, semantic, or minimal")
	exportCmd.Flags().BoolVar(&exportPatterns, "patterns", false, "Print memory pattern analysis instead")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sys, closer, err := openSystem(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if exportPatterns {
		return printJSON(sys.AnalyzePatterns())
	}

	out, err := sys.Export(exportFormat)
	if err != nil {
		return err
	}
	return printJSON(out)
}
