package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/nextlevelbuilder/hostmcp/cmd.Version=v1.0.0"
var Version = "dev"

var (
	cfgFile     string
	verbose     bool
	watchConfig bool
)

var rootCmd = &cobra.Command{
	Use:   "hostmcp",
	Short: "hostmcp — local MCP tool server for filesystem and shell access",
	Long:  "hostmcp serves policy-gated filesystem operations and shell command execution with session tracking to an MCP client over stdio.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOSTMCP_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&watchConfig, "watch-config", false, "reload the config file when it changes")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hostmcp %s\n", Version)
		},
	}
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return os.Getenv("HOSTMCP_CONFIG")
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
