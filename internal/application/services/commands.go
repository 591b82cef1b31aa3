package services

import "time"

// ConfirmCommand finalizes a redirect-flow payment after the payer returns.
type ConfirmCommand struct {
	AccessCode  string
	InvoiceID   string
	ProcessorID int64
	// Background confirmations leave transactions the payer has not finished alone.
	Background bool
	// AbandonBefore finalizes an unfinished background transaction whose access code was
	// created before it. Zero never abandons.
	AbandonBefore time.Time
}

type UpdateBillingCommand struct {
	ProcessorID       int64
	SubscriptionToken string
}

type ChangeScheduleCommand struct {
	ProcessorID       int64
	SubscriptionToken string
	NextScheduledDate time.Time
}

type CancelSubscriptionCommand struct {
	ProcessorID       int64
	SubscriptionToken string
}
