package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Actual version can be specified in build command.
var version = "unknown"

type versionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Go      string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printVersion(cmd.OutOrStdout(), viper.GetBool("json"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion writes the version line, or a JSON object when the rest of
// the output is JSON as well.
func printVersion(out io.Writer, asJSON bool) error {
	info := versionInfo{Name: app, Version: version, Go: runtime.Version()}
	if asJSON {
		return json.NewEncoder(out).Encode(info)
	}
	_, err := fmt.Fprintf(out, "%s version: %s (%s)\n", info.Name, info.Version, info.Go)
	return err
}
