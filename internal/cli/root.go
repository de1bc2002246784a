package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Переменные сборки (-ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "infdot-upload",
		Short: "infdot-upload - file uploads into project versions",
		Long: `infdot-upload accepts single-file uploads from non-browser clients,
checks credentials and project permissions, and stores the file as an
attachment of a project version.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	root.Version = Version
	root.SetVersionTemplate("infdot-upload {{.Version}}\n")

	root.AddCommand(newServeCmd(), newPasswdCmd(), newVersionCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
