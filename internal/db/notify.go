package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Notifier wraps PostgreSQL NOTIFY. When an immediate-category referral is
// stored, a notification with its id goes out on the configured channel so
// a care-coordination dashboard can LISTEN for emergencies instead of
// polling the referrals table.
type Notifier struct {
	DB      *sql.DB
	Channel string
}

// NewNotifier constructs a Notifier for the given channel.
func NewNotifier(db *sql.DB, channel string) *Notifier {
	return &Notifier{DB: db, Channel: channel}
}

// NotifyEmergency publishes a referral id on the channel.
func (n *Notifier) NotifyEmergency(ctx context.Context, referralID string) error {
	_, err := n.DB.ExecContext(ctx,
		fmt.Sprintf("SELECT pg_notify(%s, $1)", pq.QuoteLiteral(n.Channel)), referralID)
	return err
}
