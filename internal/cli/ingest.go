package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kh1ye/memory/internal/ingest"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Split text into sentences and store each as a memory",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Read text from a file ('-' for stdin)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	var text string
	switch {
	case ingestFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	case ingestFile != "":
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", ingestFile, err)
		}
		text = string(data)
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		return fmt.Errorf("provide text as arguments or via --file")
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

	res, err := ingest.Process(cmd.Context(), sys, text)
	if err != nil {
		return err
	}
	return printJSON(res)
}
