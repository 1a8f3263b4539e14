package database

import (
	"log"
	"os"
	"time"

	"carlink/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) {
	var err error

	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established.")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully.")
}

// ConnectSQLite opens an in-memory SQLite database and runs migrations.
// Used by the test suites so handlers run against a real gorm DB.
func ConnectSQLite() {
	var err error

	DB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open sqlite database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate sqlite database: %v", err)
	}
}

// Migrate runs the schema migrations for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ban{},
		&models.FriendRequest{},
		&models.Friend{},
		&models.City{},
		&models.Location{},
		&models.Car{},
		&models.UserCar{},
		&models.Route{},
		&models.Reservation{},
		&models.Group{},
		&models.Conversation{},
		&models.Message{},
		&models.ConversationMessage{},
		&models.Notification{},
		&models.Rating{},
		&models.Report{},
		&models.ReportReason{},
		&models.Suggestion{},
	)
}
