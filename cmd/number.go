package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/scraper"
)

var numberCmd = &cobra.Command{
	Use:   "number <title> [url]",
	Short: "Print the chapter number read from a title and URL (-1 if none)",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var u string
		if len(args) == 2 {
			u = args[1]
		}

		n := scraper.ExtractChapterNumber(args[0], u)
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(n, 'f', -1, 64))
	},
}

func init() {
	rootCmd.AddCommand(numberCmd)
}
