package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// MembershipMaintainer is the part of the member service the jobs drive.
type MembershipMaintainer interface {
	SweepExpired(ctx context.Context) (int64, error)
	SendExpiryReminders(ctx context.Context, days int) (int, error)
}

// ExpirationSweep deactivates members whose membership has run out.
func ExpirationSweep(members MembershipMaintainer, every time.Duration) Job {
	return Job{
		Name:     "expiration-sweep",
		Interval: every,
		Run: func(ctx context.Context) error {
			n, err := members.SweepExpired(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info().Int64("deactivated", n).Msg("expired memberships deactivated")
			}
			return nil
		},
	}
}

// ExpiryReminders emails members whose membership ends within windowDays.
func ExpiryReminders(members MembershipMaintainer, every time.Duration, windowDays int) Job {
	return Job{
		Name:     "expiry-reminders",
		Interval: every,
		Run: func(ctx context.Context) error {
			n, err := members.SendExpiryReminders(ctx, windowDays)
			if err != nil {
				return err
			}
			log.Debug().Int("sent", n).Int("windowDays", windowDays).Msg("expiry reminders sent")
			return nil
		},
	}
}
