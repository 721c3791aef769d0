package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"ChatDesk/internal/app"
	"ChatDesk/internal/config"
	"ChatDesk/pkg/zlog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "消费 Kafka 知识入库事件",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := app.New(ctx, config.GetConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := a.NewIngestWorker()
			if err != nil {
				return err
			}
			zlog.Info("ingest worker started", zap.String("topic", a.Conf.KafkaConfig.IngestTopic))
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			zlog.Info("ingest worker stopped")
			return nil
		},
	}
}

func newIngestCmd() *cobra.Command {
	var (
		tenantID string
		source   string
		file     string
		async    bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "把本地文档写入租户知识库",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(file) == "" {
				return errors.New("--tenant and --file are required")
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			ctx, stop := signalContext()
			defer stop()
			a, err := app.New(ctx, config.GetConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			if async {
				eventID, err := a.AsyncIngest.EnqueueKnowledge(ctx, tenantID, string(content), source)
				if err != nil {
					return err
				}
				zlog.Info("ingest event published", zap.String("tenant_id", tenantID), zap.String("event_id", eventID))
				return nil
			}
			chunk, err := a.Knowledge.AddKnowledge(ctx, tenantID, string(content), source)
			if err != nil {
				return err
			}
			zlog.Info("knowledge ingested", zap.String("tenant_id", tenantID), zap.String("source", chunk.Source))
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "租户 ID")
	cmd.Flags().StringVar(&source, "source", "", "来源标识，默认取内容前 50 个字符")
	cmd.Flags().StringVar(&file, "file", "", "文档路径")
	cmd.Flags().BoolVar(&async, "async", false, "投递到 Kafka 由 worker 入库")
	return cmd
}
