package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse/visitor-management/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		if clearData {
			for _, table := range []string{"notifications", "audit_logs", "visitors", "users"} {
				if _, err := sqlDB.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		seedAccounts := []struct {
			email     string
			firstName string
			lastName  string
			role      auth.Role
		}{
			{"admin@gatehouse.local", "Ada", "Admin", auth.RoleAdmin},
			{"host@gatehouse.local", "Evan", "Hosts", auth.RoleEmployee},
			{"frontdesk@gatehouse.local", "Rae", "Desk", auth.RoleReceptionist},
		}

		for _, a := range seedAccounts {
			var exists int
			err := sqlDB.QueryRow("SELECT 1 FROM users WHERE email = $1", a.email).Scan(&exists)
			if err == nil {
				fmt.Println("user already exists:", a.email)
				continue
			}

			_, err = sqlDB.Exec(
				`INSERT INTO users (email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, true, now(), now())`,
				a.email, string(hash), a.firstName, a.lastName, a.role,
			)
			if err != nil {
				log.Fatalf("failed to insert %s: %v", a.email, err)
			}
			fmt.Println("Seeded user:", a.email, "role:", a.role)
		}
	},
}
