package decoy

// #region imports
import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// #endregion

// #region constants

// expiryBaseYear is the two-digit year card expiries are drawn from.
const expiryBaseYear = 25

var firstNames = []string{
	"James", "Michael", "Robert", "John", "David", "William", "Richard", "Joseph",
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
}

// Visa, Mastercard, Amex, Discover.
var cardPrefixes = []string{"4", "5", "37", "6"}

// #endregion

// #region generator

// Generator synthesizes honeypot values. Values are well formed but never
// checksum-valid; nothing here should ever look up or validate real data.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator drawing from rng. A nil rng uses a
// randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, now: time.Now}
}

// NewSeededGenerator returns a deterministic generator, mostly for tests.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate produces a decoy of the given category, or of a uniformly
// random category when cat is empty.
func (g *Generator) Generate(cat Category) Data {
	if cat == "" {
		cat = Categories[g.rng.IntN(len(Categories))]
	}

	switch cat {
	case PersonalInfo:
		first := firstNames[g.rng.IntN(len(firstNames))]
		last := lastNames[g.rng.IntN(len(lastNames))]
		full := first + " " + last
		return Data{
			Category:    PersonalInfo,
			DisplayText: "> DECOY_NAME: " + full,
			Payload:     Payload{FullName: full, FirstName: first, LastName: last},
		}

	case DateOfBirth:
		age := 25 + g.rng.IntN(40)
		year := g.now().Year() - age
		dob := fmt.Sprintf("%02d/%02d/%d", 1+g.rng.IntN(12), 1+g.rng.IntN(28), year)
		return Data{
			Category:    DateOfBirth,
			DisplayText: fmt.Sprintf("> DECOY_DOB: %s (Age: %d)", dob, age),
			Payload:     Payload{DateOfBirth: dob, Age: age},
		}

	case CreditCard:
		number, expiry, cvv := g.creditCard()
		return Data{
			Category:    CreditCard,
			DisplayText: fmt.Sprintf("> DECOY_CC: %s | EXP: %s | CVV: %s", number, expiry, cvv),
			Payload:     Payload{CardNumber: number, Expiry: expiry, CVV: cvv},
		}

	case SSN:
		ssn := g.ssn()
		return Data{
			Category:    SSN,
			DisplayText: "> DECOY_SSN: " + ssn,
			Payload:     Payload{SSN: ssn},
		}

	case BankAccount:
		routing := g.digits(9)
		account := g.digits(10)
		return Data{
			Category:    BankAccount,
			DisplayText: fmt.Sprintf("> DECOY_ACCOUNT: %s | ROUTING: %s", account, routing),
			Payload:     Payload{AccountNumber: account, RoutingNumber: routing},
		}

	case VerificationCode:
		code := g.digits(6)
		return Data{
			Category:    VerificationCode,
			DisplayText: "> DECOY_VERIFICATION_CODE: " + code,
			Payload:     Payload{Code: code},
		}

	default: // InsurancePolicy
		policy, group := g.insurance()
		return Data{
			Category:    InsurancePolicy,
			DisplayText: fmt.Sprintf("> DECOY_INSURANCE: %s | GROUP: %s", policy, group),
			Payload:     Payload{PolicyNumber: policy, GroupNumber: group},
		}
	}
}

// #endregion

// #region field-generators

func (g *Generator) creditCard() (number, expiry, cvv string) {
	prefix := cardPrefixes[g.rng.IntN(len(cardPrefixes))]
	amex := prefix == "37"

	length, cvvLen := 16, 3
	if amex {
		length, cvvLen = 15, 4
	}
	raw := prefix + g.digits(length-len(prefix))

	if amex {
		number = raw[:4] + " " + raw[4:10] + " " + raw[10:]
	} else {
		number = raw[:4] + " " + raw[4:8] + " " + raw[8:12] + " " + raw[12:]
	}

	expiry = fmt.Sprintf("%02d/%02d", 1+g.rng.IntN(12), expiryBaseYear+g.rng.IntN(8))
	cvv = g.digits(cvvLen)
	return number, expiry, cvv
}

// ssn keeps the area out of 000, 666 and the 900-999 block.
func (g *Generator) ssn() string {
	area := 100 + g.rng.IntN(800)
	for area == 666 {
		area = 100 + g.rng.IntN(800)
	}
	group := 1 + g.rng.IntN(99)
	serial := 1 + g.rng.IntN(9999)
	return fmt.Sprintf("%03d-%02d-%04d", area, group, serial)
}

func (g *Generator) insurance() (policy, group string) {
	var letters strings.Builder
	for i := 0; i < 3; i++ {
		letters.WriteByte(byte('A' + g.rng.IntN(26)))
	}
	main := 100000000 + g.rng.IntN(900000000)
	suffix := 1 + g.rng.IntN(99)
	policy = fmt.Sprintf("%s-%d-%02d", letters.String(), main, suffix)
	group = fmt.Sprintf("GRP-%d", 10000+g.rng.IntN(90000))
	return policy, group
}

// digits returns n independently drawn decimal digits; leading zeros are kept.
func (g *Generator) digits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + g.rng.IntN(10))
	}
	return string(b)
}

// #endregion
