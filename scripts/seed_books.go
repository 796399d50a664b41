package main

// 示例数据填充脚本（演示用）
// 向空的 books 表写入一批示例图书，方便本地联调目录服务。

import (
	"flag"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bookstore/internal/config"
	"bookstore/internal/storage"
)

func main() {
	var dsn string
	// 默认 DSN 仅用于本地开发，生产请显式传入 -dsn
	flag.StringVar(&dsn, "dsn", "", "MySQL DSN (defaults to the DSN built from config.yaml)")
	flag.Parse()

	cfg := config.Load()
	if dsn == "" {
		dsn = cfg.MySQL.DSN()
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	var count int64
	if err := db.Model(&storage.Book{}).Count(&count).Error; err != nil {
		log.Fatalf("count books: %v", err)
	}
	if count > 0 {
		fmt.Printf("books table already has %d rows, nothing to do\n", count)
		return
	}

	books := []storage.Book{
		{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", Stock: 12},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Stock: 7},
		{Title: "Clean Architecture", Author: "Robert C. Martin", Stock: 5},
		{Title: "Learning MySQL", Author: "Vinicius M. Grippa", Stock: 9},
	}
	if err := db.Create(&books).Error; err != nil {
		log.Fatalf("insert books: %v", err)
	}

	fmt.Printf("seeded %d books\n", len(books))
}
