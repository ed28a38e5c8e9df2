package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"porest/backend/pkg/apiclient"
)

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	configPath string
	baseURL    string
	token      string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "porestctl",
		Short:         "porest 运维工具：数据库迁移、节假日同步、会费导出",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("POREST_CONFIG"), "配置文件路径（为空时按默认路径查找）")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", envOr("POREST_BASE_URL", "http://localhost:8080/api/v1"), "API 根地址")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("POREST_TOKEN"), "Bearer token")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newHolidaysCmd(opts))
	cmd.AddCommand(newDuesCmd(opts))
	return cmd
}

func (o *globalOptions) client() (*apiclient.Client, error) {
	if o.token == "" {
		return nil, fmt.Errorf("缺少 --token（或环境变量 POREST_TOKEN）")
	}
	return apiclient.New(o.baseURL, apiclient.WithToken(o.token))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
