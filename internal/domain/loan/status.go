package loan

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusActive},
	StatusActive:   {StatusCompleted, StatusOverdue},
}

// ParseStatus rejects anything outside the closed set before it reaches the store.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusActive, StatusCompleted, StatusOverdue:
		return st, nil
	}
	return "", fmt.Errorf("unknown loan status %q", s)
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusRejected }

// Open statuses occupy the user's single loan slot.
func (s Status) Open() bool {
	_, err := ParseStatus(string(s))
	return err == nil && !s.Terminal()
}
