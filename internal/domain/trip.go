package domain

import "time"

// Trip is the shared context expenses are logged against. BaseCurrency is the
// currency all settlements are expressed in. LedgerVersion is a monotonic
// counter bumped on every expense mutation; derived settlement snapshots carry
// the version they were computed from so stale results can be detected.
type Trip struct {
	ID            string
	Name          string
	BaseCurrency  string
	LedgerVersion int64
	Participants  []Participant
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Participant is a member of a trip.
type Participant struct {
	ID       string
	Name     string
	JoinedAt time.Time
}

// ParticipantSet returns the trip's participant ids as a lookup set.
func (t *Trip) ParticipantSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Participants))
	for _, p := range t.Participants {
		set[p.ID] = struct{}{}
	}

	return set
}

// HasParticipant reports whether the given id belongs to the trip.
func (t *Trip) HasParticipant(id string) bool {
	for _, p := range t.Participants {
		if p.ID == id {
			return true
		}
	}

	return false
}

// Validate validates trip invariants.
func (t *Trip) Validate() error {
	if err := ValidateTripName(t.Name); err != nil {
		return err
	}

	if err := ValidateCurrency(t.BaseCurrency); err != nil {
		return err
	}

	if len(t.Participants) == 0 {
		return ErrNoParticipants
	}

	seen := make(map[string]struct{}, len(t.Participants))
	for _, p := range t.Participants {
		if err := ValidateParticipantID(p.ID); err != nil {
			return err
		}

		if _, dup := seen[p.ID]; dup {
			return ErrDuplicateMember
		}
		seen[p.ID] = struct{}{}
	}

	return nil
}
