package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createOrganizerProfilesTable,
		createWalletsTable,
		createWalletTransactionsTable,
		createRefundRulesTable,
		createEventsTable,
		createTicketDetailsTable,
		createBookingsTable,
		createBookingItemsTable,
		createTicketsTable,
		createPaymentTransactionsTable,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    full_name VARCHAR(200) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createOrganizerProfilesTable = `
CREATE TABLE IF NOT EXISTS organizer_profiles (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL UNIQUE REFERENCES users(id),
    display_name VARCHAR(200) NOT NULL
);`

const createWalletsTable = `
CREATE TABLE IF NOT EXISTS wallets (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL UNIQUE REFERENCES users(id),
    balance NUMERIC(18,2) NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (balance >= 0)
);`

const createWalletTransactionsTable = `
CREATE TABLE IF NOT EXISTS wallet_transactions (
    id UUID PRIMARY KEY,
    wallet_id UUID NOT NULL REFERENCES wallets(id),
    amount NUMERIC(18,2) NOT NULL,
    balance_after NUMERIC(18,2) NOT NULL,
    type VARCHAR(30) NOT NULL,
    reference_id UUID,
    description VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (type IN ('Purchase', 'Sale', 'Refund', 'RefundDeduction'))
);
CREATE INDEX IF NOT EXISTS wallet_transactions_wallet_idx ON wallet_transactions (wallet_id, created_at DESC);`

const createRefundRulesTable = `
CREATE TABLE IF NOT EXISTS refund_rules (
    id UUID PRIMARY KEY,
    name VARCHAR(200) NOT NULL
);
CREATE TABLE IF NOT EXISTS refund_rule_details (
    id UUID PRIMARY KEY,
    refund_rule_id UUID NOT NULL REFERENCES refund_rules(id) ON DELETE CASCADE,
    min_days_before_event INTEGER NOT NULL,
    max_days_before_event INTEGER NOT NULL,
    refund_percent INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,

    CHECK (min_days_before_event <= max_days_before_event),
    CHECK (refund_percent BETWEEN 0 AND 100)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY,
    organizer_id UUID NOT NULL REFERENCES organizer_profiles(id),
    title VARCHAR(500) NOT NULL,
    sale_start_time TIMESTAMPTZ NOT NULL,
    sale_end_time TIMESTAMPTZ NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    require_approval VARCHAR(20) NOT NULL DEFAULT 'Pending',
    is_published BOOLEAN NOT NULL DEFAULT FALSE,
    ticket_type VARCHAR(10) NOT NULL,
    total_tickets INTEGER NOT NULL DEFAULT 0,
    remaining_tickets INTEGER NOT NULL DEFAULT 0,
    sold_quantity INTEGER NOT NULL DEFAULT 0,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (require_approval IN ('Pending', 'Approved', 'Rejected')),
    CHECK (ticket_type IN ('Free', 'Paid')),
    CHECK (remaining_tickets >= 0 AND sold_quantity >= 0),
    CHECK (remaining_tickets + sold_quantity = total_tickets)
);`

const createTicketDetailsTable = `
CREATE TABLE IF NOT EXISTS ticket_details (
    id UUID PRIMARY KEY,
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL,
    price NUMERIC(18,2) NOT NULL DEFAULT 0,
    ticket_quantity INTEGER NOT NULL,
    remaining_quantity INTEGER NOT NULL,
    sold_quantity INTEGER NOT NULL DEFAULT 0,
    refund_rule_id UUID REFERENCES refund_rules(id),

    CHECK (price >= 0),
    CHECK (remaining_quantity >= 0 AND sold_quantity >= 0),
    CHECK (remaining_quantity + sold_quantity = ticket_quantity)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    event_id UUID NOT NULL REFERENCES events(id),
    total_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('Pending', 'Completed', 'Cancelled'))
);
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, created_at DESC);`

const createBookingItemsTable = `
CREATE TABLE IF NOT EXISTS booking_items (
    id UUID PRIMARY KEY,
    booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    ticket_detail_id UUID NOT NULL REFERENCES ticket_details(id),
    quantity INTEGER NOT NULL,
    unit_price NUMERIC(18,2) NOT NULL,

    CHECK (quantity > 0)
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    ticket_detail_id UUID NOT NULL REFERENCES ticket_details(id),
    booking_item_id UUID NOT NULL REFERENCES booking_items(id),
    status VARCHAR(20) NOT NULL DEFAULT 'Valid',
    price NUMERIC(18,2) NOT NULL,
    token TEXT NOT NULL UNIQUE,
    qr_code_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('Valid', 'Refunded', 'Used', 'Cancelled'))
);
CREATE INDEX IF NOT EXISTS tickets_user_idx ON tickets (user_id);`

const createPaymentTransactionsTable = `
CREATE TABLE IF NOT EXISTS payment_transactions (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    booking_id UUID REFERENCES bookings(id),
    ticket_id UUID REFERENCES tickets(id),
    amount NUMERIC(18,2) NOT NULL,
    direction VARCHAR(10) NOT NULL,
    status VARCHAR(20) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (amount > 0),
    CHECK (direction IN ('Payment', 'Refund'))
);`
