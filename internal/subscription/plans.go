// Package subscription lists the service tiers an operator can pick.
package subscription

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Plan names
const (
	Basic   = "Basic"
	Pro     = "Pro"
	Premium = "Premium"
)

// Default is the plan of a fresh console
const Default = Basic

// Plan is one subscription tier
type Plan struct {
	Name         string          `json:"name" yaml:"name"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice" yaml:"monthlyPrice"`
	Description  string          `json:"description" yaml:"description"`
	Benefits     []string        `json:"benefits" yaml:"benefits"`
	Summary      string          `json:"summary" yaml:"summary"`
}

// Price renders the monthly price in dollars
func (p Plan) Price() string {
	return "$" + p.MonthlyPrice.StringFixedBank(0)
}

var plans = []Plan{
	{
		Name:         Basic,
		MonthlyPrice: decimal.NewFromInt(0),
		Description:  "Essential features for individuals",
		Benefits:     []string{"Standard delivery", "No priority", "No consultation", "Mobile access"},
		Summary:      "You are currently on standard priority. Upgrade for faster responses.",
	},
	{
		Name:         Pro,
		MonthlyPrice: decimal.NewFromInt(29),
		Description:  "Enhanced support for growing needs",
		Benefits:     []string{"Faster delivery", "Limited consultation", "Medium priority", "Priority support"},
		Summary:      "Enjoy medium priority status and limited consultations.",
	},
	{
		Name:         Premium,
		MonthlyPrice: decimal.NewFromInt(99),
		Description:  "Maximum priority and full access",
		Benefits:     []string{"Fastest delivery", "Unlimited consultation", "Highest priority", "Emergency priority", "Dedicated account manager"},
		Summary:      "You have highest priority access and unlimited emergency consultations.",
	},
}

// Plans returns every tier, cheapest first
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Lookup finds a plan by name, ignoring case
func Lookup(name string) (Plan, error) {
	for _, p := range plans {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("unknown plan %q: choose one of %s, %s, %s", name, Basic, Pro, Premium)
}
