package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkjeong/leadnet/internal/config"
	"github.com/mkjeong/leadnet/internal/db"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/util"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo referral tree and records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo users...")
		if err := seedUsers(sqlDB); err != nil {
			return err
		}
		log.Println(">> Seeding demo records...")
		if err := seedRecords(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed")
		return nil
	},
}

type seedUser struct {
	username string
	email    string
	referrer string
	level    int
}

// seedUsers inserts a deterministic referral tree (idempotent on username).
func seedUsers(dbx *sqlx.DB) error {
	users := []seedUser{
		{username: "admin", email: "admin@leadnet.local", referrer: "", level: model.AdminLevel},
		{username: "alice", email: "alice@leadnet.local", referrer: "admin", level: 1},
		{username: "bob", email: "bob@leadnet.local", referrer: "alice", level: 1},
		{username: "carol", email: "carol@leadnet.local", referrer: "bob", level: 1},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("leadnet-demo"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	// idempotent upsert based on username (UNIQUE); id is never rewritten
	const q = `
INSERT INTO users
    (id, username, email, firstname, lastname, password_hash, status, referrer, user_level, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?, 'active', ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    email      = VALUES(email),
    referrer   = VALUES(referrer),
    user_level = VALUES(user_level),
    updated_at = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, u := range users {
		if _, err := tx.Exec(q, util.NewID(), u.username, u.email, u.username, "Demo", string(hash), u.referrer, u.level, now, now); err != nil {
			return fmt.Errorf("insert user %q: %w", u.username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit users: %w", err)
	}
	return nil
}

type seedRecord struct {
	name    string
	phone   string
	manager string
	typ     model.RecordType
}

// seedRecords inserts demo customer records (idempotent on phonenumber).
func seedRecords(dbx *sqlx.DB) error {
	records := []seedRecord{
		{name: "Kim Minsoo", phone: "010-1111-2222", manager: "alice", typ: model.TypePotential},
		{name: "Lee Jiwon", phone: "010-3333-4444", manager: "bob", typ: model.TypeStockNew},
		{name: "Park Haneul", phone: "010-5555-6666", manager: "carol", typ: model.TypeCoinNew},
		{name: "Choi Serin", phone: "010-7777-8888", manager: "", typ: model.TypeELS},
	}

	const q = `
INSERT INTO records
    (id, name, phonenumber, sex, incomepath, creatorname, memo, ` + "`type`" + `, manager, incomedate, created_at, updated_at)
VALUES
    (?, ?, ?, '', '', '', '1.', ?, ?, '', ?, ?)
ON DUPLICATE KEY UPDATE
    name       = VALUES(name),
    manager    = VALUES(manager),
    ` + "`type`" + `    = VALUES(` + "`type`" + `),
    updated_at = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, r := range records {
		if _, err := tx.Exec(q, util.NewID(), r.name, util.NormalizePhone(r.phone), r.typ.String(), r.manager, now, now); err != nil {
			return fmt.Errorf("insert record %q: %w", r.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}
