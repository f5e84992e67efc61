package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"linkup/config"
)

type Database struct {
	*gorm.DB
	sqlDB *sql.DB
}

// NewDatabase opens the connection pool through lib/pq and layers gorm on top
// of it. Repositories issue raw SQL against the same pool, so constraint and
// schema errors surface as *pq.Error everywhere, including gorm paths.
func NewDatabase(cfg *config.Config) (*Database, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// SQL exposes the underlying pool for repositories and the notification
// listener.
func (db *Database) SQL() *sql.DB {
	return db.sqlDB
}

func (db *Database) Close() error {
	return db.sqlDB.Close()
}
