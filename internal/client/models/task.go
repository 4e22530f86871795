package models

import "fmt"

type KarmaType string

const (
	KarmaAction   KarmaType = "ACTION"
	KarmaPeople   KarmaType = "PEOPLE"
	KarmaThinking KarmaType = "THINKING"
)

var KarmaTypes = []KarmaType{KarmaAction, KarmaPeople, KarmaThinking}

type EffortLevel string

const (
	EffortLow    EffortLevel = "LOW"
	EffortMedium EffortLevel = "MEDIUM"
	EffortHigh   EffortLevel = "HIGH"
)

var EffortLevels = []EffortLevel{EffortLow, EffortMedium, EffortHigh}

// TaskStatus is a workflow position. NOW, NEXT and WAITING move freely; DONE
// is only reached through the mark-done action and is final.
type TaskStatus string

const (
	StatusNow     TaskStatus = "NOW"
	StatusNext    TaskStatus = "NEXT"
	StatusWaiting TaskStatus = "WAITING"
	StatusDone    TaskStatus = "DONE"
)

var TaskStatuses = []TaskStatus{StatusNow, StatusNext, StatusWaiting, StatusDone}

func ParseKarmaType(s string) (KarmaType, error) {
	for _, k := range KarmaTypes {
		if string(k) == s {
			return k, nil
		}
	}
	return "", newValidationError("karmaType", fmt.Sprintf("unknown value %q", s))
}

func ParseEffortLevel(s string) (EffortLevel, error) {
	for _, e := range EffortLevels {
		if string(e) == s {
			return e, nil
		}
	}
	return "", newValidationError("effortLevel", fmt.Sprintf("unknown value %q", s))
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, st := range TaskStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", newValidationError("status", fmt.Sprintf("unknown value %q", s))
}

// Task belongs to exactly one Dharma.
//
// Hidden mirrors Dharma.Hidden. The Store re-synchronizes it whenever a
// Dharma's hidden flag is toggled and whenever tasks enter the cache.
type Task struct {
	ID          int64       `json:"id"`
	Dharma      Dharma      `json:"dharma"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	KarmaType   KarmaType   `json:"karmaType"`
	EffortLevel EffortLevel `json:"effortLevel"`
	Status      TaskStatus  `json:"status"`
	Hidden      bool        `json:"hidden"`
	CompletedAt *Timestamp  `json:"completedAt"`
	CreatedAt   Timestamp   `json:"createdAt"`
	UpdatedAt   Timestamp   `json:"updatedAt"`
}

// SyncHidden copies the owning Dharma onto the task together with its
// hidden flag.
func (t *Task) SyncHidden(d Dharma) {
	t.Dharma = d
	t.Hidden = d.Hidden
}

// TaskInput is the body of create and edit requests.
type TaskInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	KarmaType   KarmaType   `json:"karmaType"`
	EffortLevel EffortLevel `json:"effortLevel"`
}

func (t TaskInput) Validate() error {
	if n := len([]rune(t.Title)); n < 5 || n > 60 {
		return newValidationError("title", "must be between 5 and 60 characters")
	}
	if len([]rune(t.Description)) > 200 {
		return newValidationError("description", "must be at most 200 characters")
	}
	if _, err := ParseKarmaType(string(t.KarmaType)); err != nil {
		return err
	}
	if _, err := ParseEffortLevel(string(t.EffortLevel)); err != nil {
		return err
	}
	return nil
}
