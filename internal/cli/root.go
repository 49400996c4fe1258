// Package cli 命令行入口：serve 启动 HTTP 服务，migrate 管理数据库迁移，
// notify 检查出勤表到期提醒（可由 cron 定时调用）。
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "swimadmin",
	Short:         "SwimAdmin 游泳课程管理后台",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"配置文件路径（默认查找 ./config/config.yaml 与 ./config.yaml）")
}
