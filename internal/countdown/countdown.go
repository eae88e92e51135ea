package countdown

import (
	"fmt"
	"time"

	"storefront-merchandising-service/internal/domain"
)

// State of a campaign countdown. Expired is terminal.
type State int

const (
	Counting State = iota
	Expired
)

func (s State) String() string {
	switch s {
	case Counting:
		return "counting"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state as "counting" or "expired".
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "counting":
		*s = Counting
	case "expired":
		*s = Expired
	default:
		return fmt.Errorf("countdown: unknown state %q", text)
	}
	return nil
}

// Remaining is a duration split into floor-divided day/hour/minute/second buckets.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Split breaks d into days, hours, minutes and whole seconds. Non-positive durations are all zero.
func Split(d time.Duration) Remaining {
	if d <= 0 {
		return Remaining{}
	}
	total := int64(d / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// Snapshot is what a countdown emits on every tick.
type Snapshot struct {
	CampaignID int64     `json:"campaign_id"`
	State      State     `json:"state"`
	EndsAt     time.Time `json:"ends_at"`
	Remaining
}

// Countdown tracks the time left until a campaign ends.
// It is not safe for concurrent use; Timer serialises access.
type Countdown struct {
	campaignID int64
	endsAt     time.Time
	last       Snapshot
}

// New starts a countdown. It begins Expired when now is not before endsAt.
func New(campaignID int64, endsAt, now time.Time) *Countdown {
	c := &Countdown{campaignID: campaignID, endsAt: endsAt}
	c.last = Snapshot{CampaignID: campaignID, EndsAt: endsAt, State: Counting}
	c.Tick(now)
	return c
}

// ForCampaign returns the countdown for c, or nil when there is no campaign.
func ForCampaign(c *domain.Campaign, now time.Time) *Countdown {
	if c == nil {
		return nil
	}
	return New(c.ID, c.EndsAt, now)
}

// Tick recomputes the remaining time. Once Expired, ticks return the zero snapshot unchanged.
func (c *Countdown) Tick(now time.Time) Snapshot {
	if c.last.State == Expired {
		return c.last
	}
	remaining := c.endsAt.Sub(now)
	if remaining <= 0 {
		c.last.State = Expired
		c.last.Remaining = Remaining{}
		return c.last
	}
	c.last.Remaining = Split(remaining)
	return c.last
}

// Snapshot returns the most recent state without recomputing it.
func (c *Countdown) Snapshot() Snapshot { return c.last }

// Expired reports whether the countdown reached its terminal state.
func (c *Countdown) Expired() bool { return c.last.State == Expired }
