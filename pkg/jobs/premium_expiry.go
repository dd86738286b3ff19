package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// EmailClient interface for sending emails.
type EmailClient interface {
	SendNotification(to, subject, body string) error
}

// ExpiredPremiumUser is one candidate row for the expiry sweep.
type ExpiredPremiumUser struct {
	ID        string
	Email     string
	FullName  string
	ExpiredAt time.Time
}

// PremiumStore is the persistence surface of the expiry sweep.
type PremiumStore interface {
	// ExpiredPremiumUsers returns premium users whose window ended at or
	// before now, bounded by limit.
	ExpiredPremiumUsers(ctx context.Context, now time.Time, limit int) ([]ExpiredPremiumUser, error)
	// ClearPremium downgrades one user. It reports false when the row was
	// already downgraded by a concurrent sweep.
	ClearPremium(ctx context.Context, userID string) (bool, error)
}

type gormPremiumStore struct{ db *gorm.DB }

func (s gormPremiumStore) ExpiredPremiumUsers(ctx context.Context, now time.Time, limit int) ([]ExpiredPremiumUser, error) {
	rows, err := s.db.WithContext(ctx).
		Raw(`SELECT id, email, full_name, premium_expires_at
			 FROM users
			 WHERE is_premium = true
			 AND premium_expires_at IS NOT NULL
			 AND premium_expires_at <= ?
			 LIMIT ?`, now, limit).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query expired premium users: %w", err)
	}
	defer rows.Close()

	var expired []ExpiredPremiumUser
	for rows.Next() {
		var u ExpiredPremiumUser
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.ExpiredAt); err != nil {
			return expired, fmt.Errorf("failed to scan expired user row: %w", err)
		}
		expired = append(expired, u)
	}
	if err := rows.Err(); err != nil {
		return expired, fmt.Errorf("failed to read expired premium users: %w", err)
	}
	return expired, nil
}

func (s gormPremiumStore) ClearPremium(ctx context.Context, userID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Exec(`UPDATE users
			  SET is_premium = false, premium_expires_at = NULL, updated_at = NOW()
			  WHERE id = ? AND is_premium = true`, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// sweepBatchLimit bounds one sweep so a backlog cannot hold a connection
// for minutes.
const sweepBatchLimit = 500

// PremiumExpiryJob downgrades users whose premium window has lapsed. Each
// user is handled independently so one bad row cannot stall the sweep.
type PremiumExpiryJob struct {
	store       PremiumStore
	emailClient EmailClient
	logger      *slog.Logger
}

// NewPremiumExpiryJob creates a new premium expiry job.
func NewPremiumExpiryJob(db *gorm.DB, emailClient EmailClient, logger *slog.Logger) *PremiumExpiryJob {
	return &PremiumExpiryJob{
		store:       gormPremiumStore{db: db},
		emailClient: emailClient,
		logger:      logger,
	}
}

// Name returns the job name.
func (j *PremiumExpiryJob) Name() string {
	return "premium_expiry"
}

// Execute downgrades expired premium users and notifies them.
func (j *PremiumExpiryJob) Execute(ctx context.Context) error {
	j.logger.Debug("checking premium expirations")

	expired, err := j.store.ExpiredPremiumUsers(ctx, time.Now(), sweepBatchLimit)
	if err != nil {
		return err
	}

	downgraded := 0
	errorCount := 0

	for _, u := range expired {
		cleared, err := j.store.ClearPremium(ctx, u.ID)
		if err != nil {
			j.logger.Error("failed to downgrade expired premium user", "userId", u.ID, "error", err)
			errorCount++
			continue
		}
		if !cleared {
			continue
		}

		downgraded++
		j.logger.Debug("premium expired", "userId", u.ID, "expiredAt", u.ExpiredAt)

		if j.emailClient != nil {
			subject := "Your premium access has ended"
			body := fmt.Sprintf(`
Hello %s,

Your premium access on BarterSkills expired on %s.

Renew anytime from your account to keep watching premium videos.

Best regards,
BarterSkills Team
			`, u.FullName, u.ExpiredAt.Format("2006-01-02"))

			if err := j.emailClient.SendNotification(u.Email, subject, body); err != nil {
				j.logger.Warn("failed to send premium expiry notification", "userId", u.ID, "error", err)
			}
		}
	}

	if downgraded > 0 || errorCount > 0 {
		j.logger.Info("premium expiry check completed",
			"downgraded", downgraded,
			"errors", errorCount)
	}

	return nil
}
