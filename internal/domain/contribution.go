// Package domain encodes contributions, recurring series and the gateway
// exchange types shared by the orchestration services.
package domain

import (
	"slices"
	"time"
)

// ContributionStatus is shared by one-off contributions and recurring series.
type ContributionStatus string

const (
	StatusPending    ContributionStatus = "Pending"
	StatusCompleted  ContributionStatus = "Completed"
	StatusFailed     ContributionStatus = "Failed"
	StatusCancelled  ContributionStatus = "Cancelled"
	StatusInProgress ContributionStatus = "In Progress"
)

func (s ContributionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled, StatusInProgress:
		return true
	}
	return false
}

// Contribution is owned by the host record store. This service only moves its status
// and records the gateway transaction id.
type Contribution struct {
	ID                  int64
	ContactID           int64
	InvoiceID           string
	Amount              string
	Currency            string
	Status              ContributionStatus
	TransactionID       *string
	ContributionRecurID *int64
	IsTest              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsFinal reports whether the gateway outcome has already been applied.
func (c *Contribution) IsFinal() bool {
	switch c.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// MarkPending forces a recurring enrollment back to Pending before it is submitted,
// so an interrupted submission leaves a recoverable record.
func (c *Contribution) MarkPending() error {
	if c.Status == StatusPending {
		return nil
	}
	return c.transition(StatusPending)
}

// Complete applies a successful gateway outcome.
func (c *Contribution) Complete(transactionID string) error {
	if err := c.transition(StatusCompleted); err != nil {
		return err
	}
	c.setTransactionID(transactionID)
	return nil
}

// Fail applies a declined gateway outcome.
func (c *Contribution) Fail(transactionID string) error {
	if err := c.transition(StatusFailed); err != nil {
		return err
	}
	c.setTransactionID(transactionID)
	return nil
}

func (c *Contribution) setTransactionID(transactionID string) {
	if transactionID == "" {
		return
	}
	c.TransactionID = &transactionID
}

func (c *Contribution) transition(target ContributionStatus) error {
	if err := c.canTransitionTo(target); err != nil {
		return err
	}
	c.Status = target
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Contribution) canTransitionTo(target ContributionStatus) error {
	switch c.Status {
	case StatusPending, StatusInProgress:
		if slices.Contains([]ContributionStatus{StatusPending, StatusCompleted, StatusFailed, StatusInProgress}, target) {
			return nil
		}
	}
	return NewInvalidTransitionError(c.Status, target)
}

// StatusChange is published whenever this service moves a record's status.
type StatusChange struct {
	EventID       string             `json:"event_id"`
	Entity        string             `json:"entity"`
	EntityID      int64              `json:"entity_id"`
	From          ContributionStatus `json:"from"`
	To            ContributionStatus `json:"to"`
	TransactionID string             `json:"transaction_id,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

const (
	EntityContribution      = "contribution"
	EntityContributionRecur = "contribution_recur"
)
