package database

import (
	"log/slog"
	"os"

	config "github.com/anjiri1684/tutor_bazar/configs"
	"github.com/anjiri1684/tutor_bazar/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// GormConfig is shared by the postgres connection and the sqlite test harnesses.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey, which the
// payment confirmation path relies on.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	}
}

func ConnectDB(dsn string) {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		slog.Error("🔥 Failed to connect to database", "error", err)
		os.Exit(1)
	}

	slog.Info("✅ Database connected successfully")
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TuitionRequest{},
		&models.TutorApplication{},
		&models.TutorProfile{},
		&models.ProfileApplication{},
		&models.Payment{},
	)
}

func SeedAdmin(db *gorm.DB) {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		slog.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		slog.Error("🔥 Failed to check for admin user", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("🔥 Failed to hash admin password", "error", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		slog.Error("🔥 Failed to seed admin user", "error", err)
		return
	}

	slog.Info("✅ Admin user seeded successfully")
}
