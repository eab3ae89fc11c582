// Command webcached runs the cache-coordination proxy described by a
// webcached.yaml configuration file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "webcached",
		Short: "Cache-coordination proxy fronting an origin web server",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "webcached.yaml", "path to config file")

	root.AddCommand(newServeCommand())
	root.AddCommand(newPurgeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
