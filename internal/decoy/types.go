package decoy

import "fmt"

// #region category

// Category is the closed set of honeypot data kinds.
type Category string

const (
	CreditCard       Category = "credit_card"
	SSN              Category = "ssn"
	BankAccount      Category = "bank_account"
	VerificationCode Category = "verification_code"
	InsurancePolicy  Category = "insurance_policy"
	PersonalInfo     Category = "personal_info"
	DateOfBirth      Category = "date_of_birth"
)

// Categories lists every category in draw order.
var Categories = []Category{
	CreditCard,
	SSN,
	BankAccount,
	VerificationCode,
	InsurancePolicy,
	PersonalInfo,
	DateOfBirth,
}

// ParseCategory maps a label to a Category. Empty input is not an error:
// it returns "" so callers can fall back to suggestion or a random draw.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown decoy category %q", s)
}

// #endregion category

// #region data

// Payload holds the category-specific fake fields. Only the fields for
// the owning category are populated.
type Payload struct {
	CardNumber    string `json:"card_number,omitempty"`
	Expiry        string `json:"expiry,omitempty"`
	CVV           string `json:"cvv,omitempty"`
	SSN           string `json:"ssn,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
	Code          string `json:"code,omitempty"`
	PolicyNumber  string `json:"policy_number,omitempty"`
	GroupNumber   string `json:"group_number,omitempty"`
	FullName      string `json:"full_name,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	Age           int    `json:"age,omitempty"`
}

// Data is one deployed decoy.
type Data struct {
	Category    Category `json:"category"`
	DisplayText string   `json:"display_text"`
	Payload     Payload  `json:"payload"`
}

// #endregion data
