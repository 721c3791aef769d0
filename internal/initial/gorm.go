package initial

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ChatDesk/internal/config"
	aiRag "ChatDesk/internal/modules/ai/domain/rag"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	tenantEntity "ChatDesk/internal/modules/tenant/domain/entity"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGormDB 连接 MySQL 并自动迁移；Host 为空时返回 (nil, nil)，调用方改用内存存储
func NewGormDB(conf *config.Config) (*gorm.DB, error) {
	host := strings.TrimSpace(conf.MysqlConfig.Host)
	if host == "" {
		zlog.Info("mysql not configured, using in-memory store")
		return nil, nil
	}
	port := conf.MysqlConfig.Port
	if port == 0 {
		port = 3306
	}
	dbName := conf.MysqlConfig.DatabaseName
	if dbName == "" {
		dbName = conf.AppName
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User, conf.MysqlConfig.Password, host, port, dbName)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	// 自动迁移，如果没有建表，会自动创建对应的表
	if err := db.AutoMigrate(
		&tenantEntity.Tenant{},
		&chatEntity.EndUser{},
		&chatEntity.ChatSession{},
		&chatEntity.ChatMessage{},
		&aiRag.KnowledgeChunk{},
	); err != nil {
		return nil, err
	}
	zlog.Info("mysql connected", zap.String("host", host), zap.String("db", dbName))
	return db, nil
}
