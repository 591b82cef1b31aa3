package domain

// PaymentProcessor holds the gateway credentials configured for one processor instance.
type PaymentProcessor struct {
	ID          int64
	Name        string
	APIKey      string
	APIPassword string
	IsTest      bool
	IsActive    bool
}

// ConfigErrors lists missing credentials; nil means the processor is usable.
func (p *PaymentProcessor) ConfigErrors() []string {
	var errs []string
	if p.APIKey == "" {
		errs = append(errs, "eWAY API Key is not set for this payment processor")
	}
	if p.APIPassword == "" {
		errs = append(errs, "eWAY API Password is not set for this payment processor")
	}
	return errs
}
