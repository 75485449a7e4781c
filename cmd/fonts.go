package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/config"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List discovered fonts",
	Long: `Discover fonts in the configured and platform directories and list
the family names, or every face with --variants.

Examples:
  folio fonts
  folio fonts --variants
  folio fonts --font-path ./assets/fonts --no-system-fonts`,
	RunE: runFonts,
}

func init() {
	rootCmd.AddCommand(fontsCmd)

	fontsCmd.Flags().Bool("variants", false, "List every face with style, weight, and stretch")
	fontsCmd.Flags().StringSlice("font-path", nil, "Additional font search directories")
	fontsCmd.Flags().Bool("no-system-fonts", false, "Skip the platform font directories")
}

func runFonts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFontFlags(cmd, cfg)

	book := buildBook(cfg)
	if book.Len() == 0 {
		fmt.Println("No fonts found")
		return nil
	}

	variants, _ := cmd.Flags().GetBool("variants")
	if !variants {
		for _, family := range book.Families() {
			fmt.Println(family)
		}
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Family", "Style", "Weight", "Stretch", "Path"})
	table.SetBorder(false)
	for _, family := range book.Families() {
		for _, face := range book.Faces(family) {
			table.Append([]string{
				face.Family,
				string(face.Variant.Style),
				strconv.Itoa(face.Variant.Weight),
				face.Variant.Stretch,
				face.Path,
			})
		}
	}
	table.Render()
	return nil
}
