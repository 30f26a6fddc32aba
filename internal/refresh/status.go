package refresh

import "time"

// Status is a point-in-time view of the coordinator.
type Status struct {
	State           State      `json:"state"`
	InFlight        bool       `json:"inFlight"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty"`
	CooldownUntil   *time.Time `json:"cooldownUntil,omitempty"`
	RetryAfterMs    int64      `json:"retryAfterMs"`
	LastSuccessAt   *time.Time `json:"lastSuccessAt,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
}

// State reports the current state. Cooldown expiry is evaluated here the
// same way Trigger evaluates it.
func (c *Coordinator) State() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st := Status{
		State:           StateIdle,
		InFlight:        c.inFlight,
		LastTriggeredAt: timePtr(c.triggerAt),
		LastSuccessAt:   timePtr(c.lastSuccessAt),
		LastError:       c.lastError,
	}
	switch {
	case c.inFlight:
		st.State = StateRefreshing
		st.RetryAfterMs = c.inFlightRetry(now).Milliseconds()
	case now.Before(c.cooldownUntil):
		st.State = StateCooldown
		st.CooldownUntil = timePtr(c.cooldownUntil)
		st.RetryAfterMs = c.cooldownUntil.Sub(now).Milliseconds()
	}
	return st
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
