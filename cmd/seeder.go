package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Email    string
	FullName string
	Roles    []string
	Manager  string // email of direct manager, empty for none
}

// Development seed: one organization with a small reporting chain. Arun
// manages Asha, so manager-of-owner review paths are exercisable out of the
// box.
var seedUsers = []seedUser{
	{Email: "admin@example.com", FullName: "Priya Admin", Roles: []string{"admin"}},
	{Email: "hr@example.com", FullName: "Meera HR", Roles: []string{"hr"}},
	{Email: "finance@example.com", FullName: "Vikram Finance", Roles: []string{"finance"}},
	{Email: "manager@example.com", FullName: "Arun Manager", Roles: []string{"manager"}},
	{Email: "employee@example.com", FullName: "Asha Employee", Roles: nil, Manager: "manager@example.com"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"role_assignments", "profiles", "users"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing users, profiles and role assignments")
		}

		const orgID = 1
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		profileIDs := make(map[string]int64)
		for _, u := range seedUsers {
			userID := ensureUser(db, u.Email, string(hash))
			profileIDs[u.Email] = ensureProfile(db, orgID, userID, u.FullName, u.Email)

			for _, role := range u.Roles {
				ensureRole(db, userID, orgID, role)
			}
		}

		for _, u := range seedUsers {
			if u.Manager == "" {
				continue
			}
			managerID, ok := profileIDs[u.Manager]
			if !ok {
				log.Fatalf("manager %s not seeded before report %s", u.Manager, u.Email)
			}
			if _, err := db.Exec("UPDATE profiles SET manager_id = $1 WHERE id = $2", managerID, profileIDs[u.Email]); err != nil {
				log.Fatalf("failed to set manager for %s: %v", u.Email, err)
			}
		}

		fmt.Println("Seeded", len(seedUsers), "users with profiles and roles (password: password)")
	},
}

func ensureUser(db *sqlx.DB, email, passwordHash string) int64 {
	var userID int64
	if err := db.Get(&userID, "SELECT id FROM users WHERE email = $1", email); err == nil {
		fmt.Println("user already exists:", email)
		return userID
	}

	if err := db.Get(&userID,
		"INSERT INTO users (email, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, true, now(), now()) RETURNING id",
		email, passwordHash); err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("seeded user:", email)
	return userID
}

func ensureProfile(db *sqlx.DB, orgID, userID int64, fullName, email string) int64 {
	var profileID int64
	if err := db.Get(&profileID, "SELECT id FROM profiles WHERE user_id = $1", userID); err == nil {
		return profileID
	}

	if err := db.Get(&profileID,
		"INSERT INTO profiles (org_id, user_id, full_name, email, status, working_week, created_at, updated_at) VALUES ($1, $2, $3, $4, 'active', 'mon-fri', now(), now()) RETURNING id",
		orgID, userID, fullName, email); err != nil {
		log.Fatalf("failed to insert profile for %s: %v", email, err)
	}
	return profileID
}

func ensureRole(db *sqlx.DB, userID, orgID int64, role string) {
	var exists int
	if err := db.Get(&exists,
		"SELECT 1 FROM role_assignments WHERE user_id = $1 AND org_id = $2 AND role = $3",
		userID, orgID, role); err == nil {
		return
	}

	if _, err := db.Exec(
		"INSERT INTO role_assignments (user_id, org_id, role, created_at) VALUES ($1, $2, $3, now())",
		userID, orgID, role); err != nil {
		log.Fatalf("failed to assign role %s: %v", role, err)
	}
}
