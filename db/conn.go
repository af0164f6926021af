// Package db opens the relational store used by the application
package db

import (
	"bitwise74/image-board/internal/model"
	"bitwise74/image-board/pkg/util"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	// Driver is either "sqlite" or "postgres"
	Driver string
	// Path of the SQLite database file
	Path string
	// DSN used for postgres
	DSN   string
	Debug bool
}

// New opens the database and migrates every model.
func New(o Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Unique violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	if o.Debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector

	switch o.Driver {
	case "postgres":
		dialector = postgres.Open(o.DSN)
	case "sqlite", "":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(o.Path); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", o.Path)
			}
		}

		dialector = sqlite.Open(sqliteDSN(o.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", o.Driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Image{}, model.Session{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}

// sqliteDSN turns on foreign key enforcement, sqlite has it off by default
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return path + sep + "_foreign_keys=on"
}
