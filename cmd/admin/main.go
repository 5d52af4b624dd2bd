// Command admin bootstraps and manages administrator accounts from the
// shell, for deployments where no admin exists yet.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"explorer/backend/internal/auth"
	"explorer/backend/internal/config"
	"explorer/backend/internal/models"
	"explorer/backend/internal/store"
)

func main() {
	var (
		createUser  = flag.String("create", "", "create an admin user with the given username")
		password    = flag.String("password", "", "password for -create (required with -create)")
		promoteUser = flag.String("promote", "", "promote an existing user to admin")
		listUsers   = flag.Bool("list", false, "list all users")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	users := store.NewUserStore(db)

	switch {
	case *createUser != "":
		if *password == "" {
			log.Fatal("-password is required with -create")
		}
		createAdmin(users, *createUser, *password)
	case *promoteUser != "":
		promote(users, *promoteUser)
	case *listUsers:
		list(users)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func createAdmin(users *store.UserStore, username, password string) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user, err := users.Create(username, hashed, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			log.Fatalf("User %q already exists; use -promote to make them an admin", username)
		}
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Printf("Admin user %s created (id %d)", user.Username, user.ID)
}

func promote(users *store.UserStore, username string) {
	user, err := users.FindByUsername(username)
	if err != nil {
		log.Fatalf("User %q not found", username)
	}
	if user.Role == models.RoleAdmin {
		log.Printf("User %s is already an admin", username)
		return
	}
	if err := users.UpdateRole(user.ID, models.RoleAdmin); err != nil {
		log.Fatalf("Failed to promote user: %v", err)
	}
	log.Printf("User %s promoted to admin", username)
}

func list(users *store.UserStore) {
	all, err := users.List("", 0, 1000)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	for _, u := range all {
		fmt.Printf("%d\t%s\t%s\n", u.ID, u.Username, u.Role)
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.Contains(cfg.DatabaseURL, "host=") {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	}
	return gorm.Open(sqlite.Open(cfg.DatabaseURL), gormConfig)
}
