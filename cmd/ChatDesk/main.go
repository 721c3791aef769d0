package main

import (
	"os"

	"ChatDesk/internal/config"
	"ChatDesk/pkg/zlog"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "chatdesk",
		Short:         "多租户客服机器人服务",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}
			zlog.Init(conf.LogConfig.LogPath, conf.LogConfig.Level)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "配置文件路径")
	root.AddCommand(newServeCmd(), newWorkerCmd(), newIngestCmd())

	if err := root.Execute(); err != nil {
		zlog.Error(err.Error())
		_ = zlog.Sync()
		os.Exit(1)
	}
	_ = zlog.Sync()
}
