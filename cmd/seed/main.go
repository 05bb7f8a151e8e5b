package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/logger"
	"evently/internal/middleware"
	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	buyers   = flag.Int("buyers", 10, "Number of buyer accounts to create")
	balance  = flag.String("balance", "1000.00", "Starting wallet balance of every buyer")
	password = flag.String("password", "password", "Password for all seeded accounts")
	dryRun   = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

type seedUser struct {
	user    models.User
	wallet  models.Wallet
	profile *models.OrganizerProfile
}

// Plan is everything the seeder inserts, built up front so it can be checked.
type Plan struct {
	Users   []seedUser
	Rule    models.RefundRule
	Event   models.Event
	Details []models.TicketDetail
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	startBalance, err := decimal.NewFromString(*balance)
	if err != nil || startBalance.IsNegative() {
		log.Error("Invalid -balance", "value", *balance)
		os.Exit(1)
	}

	plan := BuildPlan(time.Now().UTC(), *buyers, startBalance, middleware.HashPassword(*password))

	if *dryRun {
		log.Info("[DRY RUN] Would seed",
			"users", len(plan.Users),
			"event", plan.Event.Title,
			"ticket_types", len(plan.Details),
			"total_tickets", plan.Event.TotalTickets,
		)
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := apply(db, plan); err != nil {
		logger.Fatal("Failed to seed database", "error", err)
	}

	for _, u := range plan.Users {
		log.Info("Seeded account", "email", u.user.Email, "organizer", u.profile != nil, "balance", u.wallet.Balance.String())
	}
	log.Info("Seeding completed successfully!", "event_id", plan.Event.ID)
}

// BuildPlan lays out one organizer, n buyers and an approved paid event
// whose sales window is open at now.
func BuildPlan(now time.Time, n int, startBalance decimal.Decimal, passwordHash string) Plan {
	newUser := func(email, name string, bal decimal.Decimal) seedUser {
		id := uuid.New()
		return seedUser{
			user: models.User{
				ID:           id,
				Email:        email,
				PasswordHash: passwordHash,
				FullName:     name,
				IsActive:     true,
				CreatedAt:    now,
			},
			wallet: models.Wallet{ID: uuid.New(), UserID: id, Balance: bal, UpdatedAt: now},
		}
	}

	organizer := newUser("organizer@evently.local", "Demo Organizer", decimal.Zero)
	organizer.profile = &models.OrganizerProfile{
		ID:          uuid.New(),
		UserID:      organizer.user.ID,
		DisplayName: "Demo Productions",
	}

	plan := Plan{Users: []seedUser{organizer}}
	for i := 1; i <= n; i++ {
		plan.Users = append(plan.Users, newUser(
			fmt.Sprintf("buyer%d@evently.local", i),
			fmt.Sprintf("Buyer %d", i),
			startBalance,
		))
	}

	ruleID := uuid.New()
	plan.Rule = models.RefundRule{
		ID:   ruleID,
		Name: "Standard",
		Details: []models.RefundRuleDetail{
			{ID: uuid.New(), RefundRuleID: ruleID, MinDaysBeforeEvent: 30, MaxDaysBeforeEvent: 3650, RefundPercent: 100, Position: 1},
			{ID: uuid.New(), RefundRuleID: ruleID, MinDaysBeforeEvent: 7, MaxDaysBeforeEvent: 29, RefundPercent: 80, Position: 2},
			{ID: uuid.New(), RefundRuleID: ruleID, MinDaysBeforeEvent: 1, MaxDaysBeforeEvent: 6, RefundPercent: 50, Position: 3},
		},
	}

	start := now.Add(45 * 24 * time.Hour)
	plan.Event = models.Event{
		ID:              uuid.New(),
		OrganizerID:     organizer.profile.ID,
		Title:           "Demo Concert",
		SaleStartTime:   now.Add(-24 * time.Hour),
		SaleEndTime:     start.Add(-24 * time.Hour),
		StartTime:       start,
		EndTime:         start.Add(3 * time.Hour),
		RequireApproval: models.ApprovalApproved,
		IsPublished:     true,
		TicketType:      models.EventTicketPaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, d := range []struct {
		name  string
		price int64
		qty   int
	}{
		{"Standard", 50, 200},
		{"VIP", 150, 50},
	} {
		plan.Details = append(plan.Details, models.TicketDetail{
			ID:                uuid.New(),
			EventID:           plan.Event.ID,
			Name:              d.name,
			Price:             decimal.NewFromInt(d.price),
			TicketQuantity:    d.qty,
			RemainingQuantity: d.qty,
			RefundRuleID:      &ruleID,
		})
		plan.Event.TotalTickets += d.qty
	}
	plan.Event.RemainingTickets = plan.Event.TotalTickets

	return plan
}

func apply(db *database.DB, plan Plan) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range plan.Users {
		if err := insertUser(tx, u); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.user.Email, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO refund_rules (id, name) VALUES ($1, $2)`, plan.Rule.ID, plan.Rule.Name); err != nil {
		return fmt.Errorf("failed to insert refund rule: %w", err)
	}
	for _, d := range plan.Rule.Details {
		_, err := tx.Exec(`
			INSERT INTO refund_rule_details (id, refund_rule_id, min_days_before_event, max_days_before_event, refund_percent, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			d.ID, d.RefundRuleID, d.MinDaysBeforeEvent, d.MaxDaysBeforeEvent, d.RefundPercent, d.Position)
		if err != nil {
			return fmt.Errorf("failed to insert refund tier: %w", err)
		}
	}

	e := plan.Event
	_, err = tx.Exec(`
		INSERT INTO events (id, organizer_id, title, sale_start_time, sale_end_time, start_time, end_time,
		                    require_approval, is_published, ticket_type, total_tickets, remaining_tickets,
		                    sold_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.OrganizerID, e.Title, e.SaleStartTime, e.SaleEndTime, e.StartTime, e.EndTime,
		e.RequireApproval, e.IsPublished, e.TicketType, e.TotalTickets, e.RemainingTickets,
		e.SoldQuantity, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	for _, d := range plan.Details {
		_, err := tx.Exec(`
			INSERT INTO ticket_details (id, event_id, name, price, ticket_quantity, remaining_quantity, sold_quantity, refund_rule_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.ID, d.EventID, d.Name, d.Price, d.TicketQuantity, d.RemainingQuantity, d.SoldQuantity, d.RefundRuleID)
		if err != nil {
			return fmt.Errorf("failed to insert ticket type %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertUser(tx *sql.Tx, u seedUser) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.user.ID, u.user.Email, u.user.PasswordHash, u.user.FullName, u.user.IsActive, u.user.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO wallets (id, user_id, balance, updated_at) VALUES ($1, $2, $3, $4)`,
		u.wallet.ID, u.wallet.UserID, u.wallet.Balance, u.wallet.UpdatedAt)
	if err != nil {
		return err
	}

	if u.profile != nil {
		_, err = tx.Exec(`INSERT INTO organizer_profiles (id, user_id, display_name) VALUES ($1, $2, $3)`,
			u.profile.ID, u.profile.UserID, u.profile.DisplayName)
	}
	return err
}
