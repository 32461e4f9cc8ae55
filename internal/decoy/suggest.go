package decoy

import (
	"fmt"
	"strings"
)

// #region rules

type suggestRule struct {
	category Category
	cues     []string
}

// suggestRules is a priority list: the first rule with a matching cue wins.
// Name cues must stay ahead of account cues so "name" + "account number"
// resolves to PersonalInfo.
var suggestRules = []suggestRule{
	{PersonalInfo, []string{"name", "full name", "first name", "last name", "who am i speaking with", "may i have your name"}},
	{DateOfBirth, []string{"date of birth", "birthday", "birth date", "dob", "age", "when were you born"}},
	{InsurancePolicy, []string{"insurance", "policy number", "group number", "member id"}},
	{CreditCard, []string{"credit card", "card number", "cvv", "expir", "payment"}},
	{SSN, []string{"ssn", "social security", "tax id", "identification number"}},
	{BankAccount, []string{"bank account", "account number", "routing", "direct deposit"}},
	{VerificationCode, []string{"verification code", "confirm", "code", "otp", "pin"}},
}

// #endregion

// #region suggest

// Suggest picks the decoy category that fits the caller's goal and latest
// line. Matching is plain substring search over the lower-cased blob.
func Suggest(goal, lastMessage string) (Category, bool) {
	blob := strings.ToLower(goal + " " + lastMessage)
	for _, r := range suggestRules {
		for _, cue := range r.cues {
			if strings.Contains(blob, cue) {
				return r.category, true
			}
		}
	}
	return "", false
}

// #endregion

// #region format

// FormatForPrompt renders what "the user provided" for the caller model.
func FormatForPrompt(d Data) string {
	p := d.Payload
	switch d.Category {
	case PersonalInfo:
		return "User provided name: " + p.FullName
	case DateOfBirth:
		return fmt.Sprintf("User provided date of birth: %s (age %d)", p.DateOfBirth, p.Age)
	case CreditCard:
		return fmt.Sprintf("User provided credit card: %s, expiry %s, CVV %s", p.CardNumber, p.Expiry, p.CVV)
	case SSN:
		return "User provided SSN: " + p.SSN
	case BankAccount:
		return fmt.Sprintf("User provided bank account %s, routing %s", p.AccountNumber, p.RoutingNumber)
	case VerificationCode:
		return "User provided verification code: " + p.Code
	case InsurancePolicy:
		return fmt.Sprintf("User provided insurance policy number: %s, group number: %s", p.PolicyNumber, p.GroupNumber)
	}
	return ""
}

// #endregion
