package domain

import "time"

// ContributionRecur is a recurring series whose card is stored at the gateway
// as a token customer.
type ContributionRecur struct {
	ID                         int64
	ContactID                  int64
	PaymentProcessorID         int64
	ProcessorSubscriptionToken string
	Status                     ContributionStatus
	FailureCount               int
	NextScheduledDate          *time.Time
	Amount                     string
	UpdatedAt                  time.Time
}

// GuardBillingMutation rejects changes to a series that has ended.
func (r *ContributionRecur) GuardBillingMutation() error {
	switch r.Status {
	case StatusCompleted:
		return NewFinalizedSubscriptionError("completed")
	case StatusCancelled:
		return NewFinalizedSubscriptionError("cancelled")
	}
	return nil
}

// ApplyBillingUpdate records a successful billing-detail update. Fresh card details are
// grounds for recovering a failed series; the failure counter always starts over.
func (r *ContributionRecur) ApplyBillingUpdate() (previous ContributionStatus) {
	previous = r.Status
	if r.Status == StatusFailed {
		r.Status = StatusInProgress
	}
	r.FailureCount = 0
	r.UpdatedAt = time.Now()
	return previous
}

// Activate records the gateway token customer created by the first successful payment
// and starts the series. An ended series keeps its token and status.
func (r *ContributionRecur) Activate(tokenCustomerID string) (previous ContributionStatus) {
	previous = r.Status
	if r.GuardBillingMutation() != nil {
		return previous
	}
	if tokenCustomerID != "" {
		r.ProcessorSubscriptionToken = tokenCustomerID
	}
	if r.Status == StatusPending {
		r.Status = StatusInProgress
	}
	r.UpdatedAt = time.Now()
	return previous
}

// Reschedule moves the next charge date of an active series.
func (r *ContributionRecur) Reschedule(next time.Time) error {
	if err := r.GuardBillingMutation(); err != nil {
		return err
	}
	r.NextScheduledDate = &next
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel ends the series locally. The gateway keeps the token customer.
func (r *ContributionRecur) Cancel() error {
	if err := r.GuardBillingMutation(); err != nil {
		return err
	}
	r.Status = StatusCancelled
	r.NextScheduledDate = nil
	r.UpdatedAt = time.Now()
	return nil
}
