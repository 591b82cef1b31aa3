package eway

// Library and gateway codes used by the client itself.
const (
	CodeEndpointNotInitialised = "S9990"
	CodeCredentialsMissing     = "S9991"
	CodeCommunicationError     = "S9992"
	CodeAuthenticationError    = "S9993"
)

var defaultMessages = map[string]string{
	"A2000": "Transaction Approved",
	"A2008": "Honour With Identification",
	"A2010": "Approved For Partial Amount",
	"A2011": "Approved, VIP",
	"A2016": "Approved, Update Track 3",

	"D4401": "Refer to Issuer",
	"D4402": "Refer to Issuer, special",
	"D4403": "No Merchant",
	"D4404": "Pick Up Card",
	"D4405": "Do Not Honour",
	"D4406": "Error",
	"D4412": "Invalid Transaction",
	"D4413": "Invalid Amount",
	"D4414": "Invalid Card Number",
	"D4419": "Re-enter Last Transaction",
	"D4433": "Expired Card",
	"D4436": "Expired Card",
	"D4451": "Insufficient Funds",
	"D4454": "Expired Card",
	"D4457": "Function Not Permitted",
	"D4459": "Suspected Fraud",
	"D4462": "Restricted Card",
	"D4482": "CVV Validation Error",

	"S5000": "System Error",
	"S5085": "Started 3dSecure",
	"S5086": "Routed 3dSecure",
	"S5099": "Incomplete (Access Code in progress/incomplete)",

	"V6000": "Validation error",
	"V6001": "Invalid CustomerIP",
	"V6010": "Invalid TransactionType, account not certified for eCome only MOTO or Recurring available",
	"V6011": "Invalid Payment TotalAmount",
	"V6012": "Invalid Payment InvoiceDescription",
	"V6013": "Invalid Payment InvoiceReference",
	"V6014": "Invalid Payment InvoiceNumber",
	"V6015": "Invalid Payment CurrencyCode",
	"V6021": "EWAY_CARDHOLDERNAME Required",
	"V6022": "EWAY_CARDNUMBER Required",
	"V6023": "EWAY_CARDCVN Required",
	"V6033": "Invalid Expiry Date",
	"V6034": "Invalid Issue Number",
	"V6040": "Invalid TokenCustomerID",
	"V6041": "Customer Required",
	"V6042": "Customer FirstName Required",
	"V6043": "Customer LastName Required",
	"V6044": "Customer CountryCode Required",
	"V6045": "Customer Title Required",
	"V6046": "TokenCustomerID Required",
	"V6047": "RedirectURL Required",
	"V6051": "Invalid Customer FirstName",
	"V6052": "Invalid Customer LastName",
	"V6053": "Invalid Customer CountryCode",
	"V6058": "Invalid Customer Title",
	"V6059": "Invalid RedirectURL",
	"V6060": "Invalid TokenCustomerID",
	"V6068": "Invalid Customer Street1",
	"V6070": "Invalid Customer City",
	"V6071": "Invalid Customer State",
	"V6072": "Invalid Customer PostalCode",
	"V6074": "Invalid Customer Email",
	"V6100": "Invalid EWAY_CARDNAME",
	"V6101": "Invalid EWAY_CARDEXPIRYMONTH",
	"V6102": "Invalid EWAY_CARDEXPIRYYEAR",
	"V6106": "Invalid EWAY_CARDCVN",
	"V6107": "Invalid EWAY_ACCESSCODE",
	"V6110": "Invalid EWAY_CARDNUMBER",
	"V6111": "Unauthorised API Access, Account Not PCI Certified",
	"V6150": "Invalid Refund Amount",

	CodeEndpointNotInitialised: "Library does not have Endpoint initialised, or not initialise to a URL",
	CodeCredentialsMissing:     "Library does not have API Key or API Password or are invalid",
	CodeCommunicationError:     "Communication error with Rapid API",
	CodeAuthenticationError:    "Rapid API authentication error",
}

// MessageTable maps gateway codes to readable text. Unknown codes are returned unchanged.
type MessageTable struct {
	messages map[string]string
}

// NewMessageTable returns the built-in table, optionally overridden by extra entries.
func NewMessageTable(overrides map[string]string) *MessageTable {
	messages := make(map[string]string, len(defaultMessages)+len(overrides))
	for code, msg := range defaultMessages {
		messages[code] = msg
	}
	for code, msg := range overrides {
		messages[code] = msg
	}
	return &MessageTable{messages: messages}
}

func (t *MessageTable) Message(code string) string {
	if msg, ok := t.messages[code]; ok {
		return msg
	}
	return code
}
