package calculator

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrZeroSubtotal    = errors.New("subtotal cannot be zero")
	ErrNoParticipants  = errors.New("must have at least one participant")
	ErrNothingAssigned = errors.New("no item is assigned to a participant")
	ErrNegativeAmount  = errors.New("amounts cannot be negative")
	ErrDuplicatePerson = errors.New("participants must be unique")
)

// PersonSplit represents the calculated split for one person
type PersonSplit struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Items    []PersonItem
}

// PersonItem is one person's share of one line item, for display.
type PersonItem struct {
	Description string
	Amount      decimal.Decimal
}

// Item represents a single line item on an expense (usually read off a receipt)
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// CalculateSplit computes how much each person owes including proportional tax.
//
// Each person's weight is the sum of their item shares (an item assigned to n
// people counts amount/n for each). The bill total and subtotal are then
// distributed by weight in whole cents, so per-person totals always add up to
// billTotal exactly. With no items the bill is split equally.
func CalculateSplit(items []Item, billTotal, billSubtotal decimal.Decimal, participants []string) (map[string]*PersonSplit, error) {
	if billSubtotal.IsZero() {
		return nil, ErrZeroSubtotal
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if billTotal.IsNegative() || billSubtotal.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if hasDuplicates(participants) {
		return nil, ErrDuplicatePerson
	}

	splits := make(map[string]*PersonSplit, len(participants))
	weights := make(map[string]decimal.Decimal, len(participants))
	for _, p := range participants {
		splits[p] = &PersonSplit{}
		weights[p] = decimal.Zero
	}

	if len(items) == 0 {
		for _, p := range participants {
			weights[p] = decimal.NewFromInt(1)
		}
	}

	for _, item := range items {
		if item.Amount.IsNegative() {
			return nil, ErrNegativeAmount
		}
		if len(item.AssignedTo) == 0 {
			continue
		}

		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(item.AssignedTo))))
		for _, person := range item.AssignedTo {
			split, exists := splits[person]
			if !exists {
				continue
			}
			weights[person] = weights[person].Add(perPerson)
			split.Items = append(split.Items, PersonItem{
				Description: item.Description,
				Amount:      perPerson.Round(2),
			})
		}
	}

	totals, err := Allocate(billTotal, participants, weights)
	if err != nil {
		return nil, err
	}
	subtotals, err := Allocate(billSubtotal, participants, weights)
	if err != nil {
		return nil, err
	}

	for _, p := range participants {
		split := splits[p]
		split.Total = totals[p]
		split.Subtotal = subtotals[p]
		split.Tax = split.Total.Sub(split.Subtotal)
	}

	return splits, nil
}

// SplitEqually divides total among participants in whole cents. The first
// participants absorb the leftover cents, so the parts always sum to total.
func SplitEqually(total decimal.Decimal, participants []string) (map[string]decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if total.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if hasDuplicates(participants) {
		return nil, ErrDuplicatePerson
	}
	weights := make(map[string]decimal.Decimal, len(participants))
	for _, p := range participants {
		weights[p] = decimal.NewFromInt(1)
	}
	return Allocate(total, participants, weights)
}

// Allocate distributes amount across keys proportionally to weights using the
// largest-remainder method on cents. Ties go to the earlier key.
func Allocate(amount decimal.Decimal, keys []string, weights map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	totalWeight := decimal.Zero
	for _, k := range keys {
		totalWeight = totalWeight.Add(weights[k])
	}
	if !totalWeight.IsPositive() {
		return nil, ErrNothingAssigned
	}

	cents := amount.Round(2).Shift(2).IntPart()

	type remainder struct {
		key   string
		index int
		frac  decimal.Decimal
	}

	parts := make(map[string]int64, len(keys))
	rems := make([]remainder, 0, len(keys))
	var allocated int64
	for i, k := range keys {
		exact := decimal.NewFromInt(cents).Mul(weights[k]).Div(totalWeight)
		floor := exact.Floor()
		parts[k] = floor.IntPart()
		allocated += parts[k]
		rems = append(rems, remainder{key: k, index: i, frac: exact.Sub(floor)})
	}

	sort.SliceStable(rems, func(i, j int) bool {
		if !rems[i].frac.Equal(rems[j].frac) {
			return rems[i].frac.GreaterThan(rems[j].frac)
		}
		return rems[i].index < rems[j].index
	})

	// Division rounding can leave the floors a cent over or under.
	for left := cents - allocated; left != 0; {
		for i := 0; i < len(rems) && left != 0; i++ {
			if left > 0 {
				if weights[rems[i].key].IsZero() {
					continue
				}
				parts[rems[i].key]++
				left--
			} else {
				r := rems[len(rems)-1-i]
				if parts[r.key] == 0 {
					continue
				}
				parts[r.key]--
				left++
			}
		}
	}

	result := make(map[string]decimal.Decimal, len(keys))
	for _, k := range keys {
		result[k] = decimal.New(parts[k], -2)
	}
	return result, nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
