package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Criterion names, in the order checks are evaluated and reported.
const (
	CriterionIncome   = "income"
	CriterionAge      = "age"
	CriterionGender   = "gender"
	CriterionState    = "state"
	CriterionCategory = "category"
)

// CriterionOrder lists all criterion families in evaluation order.
var CriterionOrder = []string{
	CriterionIncome,
	CriterionAge,
	CriterionGender,
	CriterionState,
	CriterionCategory,
}

// CheckIncome evaluates the user's annual income against the income bounds.
// Either bound is optional; both are closed intervals.
func CheckIncome(income *float64, criteria HardCriteria) CheckResult {
	if criteria.MinIncome == nil && criteria.MaxIncome == nil {
		return CheckResult{Criterion: CriterionIncome, Status: StatusEligible, Reason: "no income restriction"}
	}
	if income == nil {
		return CheckResult{Criterion: CriterionIncome, Status: StatusUnknown, Reason: "annual income not provided"}
	}
	value := formatAmount(*income)
	if criteria.MaxIncome != nil && *income > *criteria.MaxIncome {
		return CheckResult{
			Criterion: CriterionIncome,
			Status:    StatusNotEligible,
			Reason:    "income above maximum limit of " + formatAmount(*criteria.MaxIncome),
			UserValue: value,
		}
	}
	if criteria.MinIncome != nil && *income < *criteria.MinIncome {
		return CheckResult{
			Criterion: CriterionIncome,
			Status:    StatusNotEligible,
			Reason:    "income below minimum limit of " + formatAmount(*criteria.MinIncome),
			UserValue: value,
		}
	}
	return CheckResult{Criterion: CriterionIncome, Status: StatusEligible, Reason: "income within limits", UserValue: value}
}

// CheckAge evaluates the user's age against the age bounds.
func CheckAge(age *int, criteria HardCriteria) CheckResult {
	if criteria.MinAge == nil && criteria.MaxAge == nil {
		return CheckResult{Criterion: CriterionAge, Status: StatusEligible, Reason: "no age restriction"}
	}
	if age == nil {
		return CheckResult{Criterion: CriterionAge, Status: StatusUnknown, Reason: "age not provided"}
	}
	value := strconv.Itoa(*age)
	if criteria.MaxAge != nil && *age > *criteria.MaxAge {
		return CheckResult{
			Criterion: CriterionAge,
			Status:    StatusNotEligible,
			Reason:    "age above maximum limit of " + strconv.Itoa(*criteria.MaxAge),
			UserValue: value,
		}
	}
	if criteria.MinAge != nil && *age < *criteria.MinAge {
		return CheckResult{
			Criterion: CriterionAge,
			Status:    StatusNotEligible,
			Reason:    "age below minimum limit of " + strconv.Itoa(*criteria.MinAge),
			UserValue: value,
		}
	}
	return CheckResult{Criterion: CriterionAge, Status: StatusEligible, Reason: "age within limits", UserValue: value}
}

// CheckGender evaluates the user's gender against the eligible gender set.
func CheckGender(gender Gender, criteria HardCriteria) CheckResult {
	return checkMembership(CriterionGender, string(gender), criteria.Genders)
}

// CheckState evaluates the user's state against the eligible state set.
func CheckState(state string, criteria HardCriteria) CheckResult {
	return checkMembership(CriterionState, state, criteria.States)
}

// CheckCategory evaluates the user's category against the eligible category set.
func CheckCategory(category Category, criteria HardCriteria) CheckResult {
	return checkMembership(CriterionCategory, string(category), criteria.Categories)
}

// checkMembership applies the shared set-membership rule: an empty eligible
// set means no restriction, a missing user value means unknown, otherwise
// strict case-insensitive membership.
func checkMembership(criterion, value string, eligible []string) CheckResult {
	if len(eligible) == 0 {
		return CheckResult{Criterion: criterion, Status: StatusEligible, Reason: "no " + criterion + " restriction"}
	}
	if value == "" {
		return CheckResult{Criterion: criterion, Status: StatusUnknown, Reason: criterion + " not provided"}
	}
	for _, e := range eligible {
		if strings.EqualFold(strings.TrimSpace(e), value) {
			return CheckResult{Criterion: criterion, Status: StatusEligible, Reason: criterion + " matches eligible set", UserValue: value}
		}
	}
	return CheckResult{
		Criterion: criterion,
		Status:    StatusNotEligible,
		Reason:    fmt.Sprintf("%s %q not in eligible set [%s]", criterion, value, strings.Join(eligible, ", ")),
		UserValue: value,
	}
}

// EvaluateEligibility compares a user profile against hard criteria
// criterion by criterion and aggregates the verdict.
//
// Aggregation follows the benefit-of-the-doubt policy: the overall verdict is
// ineligible only when at least one criterion is definitely violated. An
// unknown criterion never flips the verdict; it is recorded in
// UnknownCriteria so callers can flag the result as unverified. A single
// definite violation is absolute — there is no weighting or partial credit.
func EvaluateEligibility(profile UserProfile, criteria HardCriteria) EligibilityVerdict {
	checks := []CheckResult{
		CheckIncome(profile.AnnualIncome, criteria),
		CheckAge(profile.Age, criteria),
		CheckGender(profile.Gender, criteria),
		CheckState(profile.State, criteria),
		CheckCategory(profile.Category, criteria),
	}

	verdict := EligibilityVerdict{
		Checks:      checks,
		IsEligible:  true,
		EvaluatedAt: time.Now().UTC(),
	}
	for _, check := range checks {
		switch check.Status {
		case StatusNotEligible:
			verdict.IsEligible = false
		case StatusUnknown:
			verdict.UnknownCriteria = append(verdict.UnknownCriteria, check.Criterion)
		}
	}
	return verdict
}

// StatusMap flattens the verdict into a criterion -> definitely-met map.
// Unknown criteria map to false; consult UnknownCriteria to tell an unknown
// apart from a definite violation.
func (v EligibilityVerdict) StatusMap() map[string]bool {
	statuses := make(map[string]bool, len(v.Checks))
	for _, check := range v.Checks {
		statuses[check.Criterion] = check.Status == StatusEligible
	}
	return statuses
}

// Uncertain reports whether any criterion could not be checked.
func (v EligibilityVerdict) Uncertain() bool {
	return len(v.UnknownCriteria) > 0
}

// DescribeCriteria renders criteria as human-readable requirement text,
// keyed by criterion name. Unconstrained criteria are omitted.
func DescribeCriteria(criteria HardCriteria) map[string]string {
	requirements := make(map[string]string)

	switch {
	case criteria.MinIncome != nil && criteria.MaxIncome != nil:
		requirements[CriterionIncome] = fmt.Sprintf("Annual income should be between ₹%s and ₹%s",
			formatAmount(*criteria.MinIncome), formatAmount(*criteria.MaxIncome))
	case criteria.MaxIncome != nil:
		requirements[CriterionIncome] = "Annual income should be less than ₹" + formatAmount(*criteria.MaxIncome)
	case criteria.MinIncome != nil:
		requirements[CriterionIncome] = "Annual income should be at least ₹" + formatAmount(*criteria.MinIncome)
	}

	switch {
	case criteria.MinAge != nil && criteria.MaxAge != nil:
		requirements[CriterionAge] = fmt.Sprintf("Age should be between %d and %d years", *criteria.MinAge, *criteria.MaxAge)
	case criteria.MaxAge != nil:
		requirements[CriterionAge] = fmt.Sprintf("Age should be at most %d years", *criteria.MaxAge)
	case criteria.MinAge != nil:
		requirements[CriterionAge] = fmt.Sprintf("Age should be at least %d years", *criteria.MinAge)
	}

	if len(criteria.Genders) > 0 {
		requirements[CriterionGender] = "Open to " + joinTitled(criteria.Genders) + " applicants"
	}
	if len(criteria.States) > 0 {
		requirements[CriterionState] = "Must be a resident of " + joinTitled(criteria.States)
	}
	if len(criteria.Categories) > 0 {
		requirements[CriterionCategory] = "Belongs to " + strings.ToUpper(strings.Join(criteria.Categories, ", ")) + " category"
	}
	return requirements
}

func joinTitled(values []string) string {
	titled := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		titled = append(titled, strings.ToUpper(v[:1])+v[1:])
	}
	slices.Sort(titled)
	return strings.Join(titled, ", ")
}

// formatAmount renders a monetary amount without a trailing fraction when
// the amount is whole.
func formatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
