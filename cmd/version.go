package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   = "v1.2.0"
	buildTime = "2026-08-29"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("社群转化订单管理工具 (sqgl) %s\n", version)
		fmt.Printf("构建时间: %s\n", buildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
