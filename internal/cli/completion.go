package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// matrixExtensions are the file extensions pkg/io can import.
var matrixExtensions = []string{"csv", "txt", "tsv", "xlsx", "xlsm", "json"}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell.

Besides subcommands and flags, the scripts complete matrix files (csv, xlsx,
json), --mode, --matrix-format and the output formats of solve and render.

  $ source <(citytour completion bash)
  $ citytour completion zsh > "${fpath[1]}/_citytour"
  $ citytour completion fish > ~/.config/fish/completions/citytour.fish
  PS> citytour completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// completeMatrixFile offers only files pkg/io can read as the matrix argument.
func completeMatrixFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return matrixExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// registerMatrixCompletions wires value completion for the shared matrix
// flags of cmd.
func registerMatrixCompletions(cmd *cobra.Command) {
	cmd.ValidArgsFunction = completeMatrixFile
	_ = cmd.RegisterFlagCompletionFunc("mode",
		cobra.FixedCompletions([]string{"symmetric", "asymmetric"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("matrix-format",
		cobra.FixedCompletions([]string{"csv", "xlsx", "json"}, cobra.ShellCompDirectiveNoFileComp))
}
