package database

import (
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// InitTestDB 独立的内存数据库，每个测试用例一份
// 使用命名共享内存库，避免连接池里每个连接各开一份空库
func InitTestDB() *gorm.DB {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to access test database")
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		panic("failed to migrate test database")
	}
	return db
}

func CleanTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
