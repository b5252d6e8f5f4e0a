package store

import (
	"encoding/base64"

	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

type Options struct {
	// DefaultAdminPassword, when empty, seeds the admin account with a
	// random password printed once at startup.
	DefaultAdminPassword string
}

func New(driver, dsn string, log *zap.Logger, opts Options) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique violations surface as gorm.ErrDuplicatedKey so code
		// collisions can be retried with regeneration.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.DeviceAuthCode{},
		&models.CliSession{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db, log: log}

	if err := store.seedData(opts); err != nil {
		log.Warn("failed to seed data", zap.Error(err))
	}

	return store, nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes, err := util.CryptoRandomBytes(length)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

func (s *Store) seedData(opts Options) error {
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	password := opts.DefaultAdminPassword
	generated := false
	if password == "" {
		var err error
		password, err = generateRandomPassword(16)
		if err != nil {
			return err
		}
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     "admin",
		Email:        "admin@localhost",
		FullName:     "Administrator",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	if generated {
		s.log.Info("created default admin user",
			zap.String("username", "admin"),
			zap.String("password", password))
	} else {
		s.log.Info("created default admin user", zap.String("username", "admin"))
	}
	return nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying GORM database connection
func (s *Store) DB() *gorm.DB {
	return s.db
}
