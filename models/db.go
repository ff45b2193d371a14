package models

import (
	"ContentCreator-server/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var GormDB *gorm.DB

// InitDB 连接 MySQL 并迁移表结构
func InitDB(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.L.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := migrate(db); err != nil {
		logger.L.Fatal("数据库迁移失败", zap.Error(err))
	}
	GormDB = db
}

// InitSQLite 本地开发与测试用的文件/内存库
func InitSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Project{},
		&Video{},
		&ProjectTemplate{},
		&Task{},
	)
}
