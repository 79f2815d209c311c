package cmd

import (
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/A-zanke/alumni-matcher/internal/department"
)

var departmentsCmd = &cobra.Command{
	Use:   "departments [raw...]",
	Short: "Print the canonical department for each argument, or the synonym table",
	Run: func(cmd *cobra.Command, args []string) {
		if err := departments(cmd.OutOrStdout(), viper.GetString("departments.synonyms-file"), args); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(departmentsCmd)

	departmentsCmd.Flags().String("synonyms-file", "", "YAML synonym table replacing the built-in one")
	viper.BindPFlag("departments.synonyms-file", departmentsCmd.Flags().Lookup("synonyms-file"))
}

func departments(out io.Writer, synonymsFile string, args []string) error {
	table, err := department.DefaultTable()
	if strings.TrimSpace(synonymsFile) != "" {
		table, err = department.LoadTable(synonymsFile)
	}
	if err != nil {
		return err
	}

	canon, err := department.New(table)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, g := range table.Groups {
			fmt.Fprintln(out, g.String())
		}
		for _, short := range slices.Sorted(maps.Keys(table.Overrides)) {
			fmt.Fprintf(out, "%s -> %s\n", department.Normalize(short), department.Normalize(table.Overrides[short]))
		}
		return nil
	}

	for _, raw := range args {
		canonical := canon.Canonicalize(raw)
		if canonical == "" {
			canonical = "(empty)"
		}
		fmt.Fprintf(out, "%q -> %s\n", raw, canonical)
	}
	return nil
}
