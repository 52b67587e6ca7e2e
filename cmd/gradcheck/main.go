// gradcheck 命令行工具：离线识别成绩单图片、按本地毕业要求文件做判定
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gradcheck",
		Short:        "Graduation requirement checker",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newOCRCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	return rootCmd
}
