package sqlite

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open открывает файл базы SQLite и создаёт недостающие таблицы.
// Все запросы идут через одно соединение, а транзакции открываются как BEGIN IMMEDIATE,
// поэтому конкурирующие записи выстраиваются в очередь, а не получают SQLITE_BUSY.
func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL&_foreign_keys=on", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&ProductModel{}, &SaleModel{}, &OutboxEventModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

// Close закрывает пул соединений gorm.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return sqlDB.Close()
}

// Ping проверяет доступность базы.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return sqlDB.PingContext(ctx)
}

type txKey struct{}

// Transactor выполняет функцию в транзакции gorm и передаёт её репозиториям через ctx.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn возвращает транзакцию из ctx или базовое соединение.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}

	return db.WithContext(ctx)
}
