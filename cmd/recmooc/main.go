// Command recmooc runs the course recommendation chatbot, either as an HTTP
// service or as an interactive terminal session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "recmooc",
		Short:         "Course recommendation chatbot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")

	root.AddCommand(newServeCommand())
	root.AddCommand(newChatCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
