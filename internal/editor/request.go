// Package editor applies availability and price edits to a seat map.  An
// edit is described by a Request, resolved against a freshly built Index and
// reported back as a Result; the document is mutated in place.
package editor

import (
	"errors"
	"strings"
)

var (
	// ErrConflictingModes is returned when price-only and multi-tier are both requested.
	ErrConflictingModes = errors.New("price-only and multi-tier modes are mutually exclusive")
	// ErrNoRanges is returned when a mode needs seat ranges and none were given.
	ErrNoRanges = errors.New("no seat ranges given")
	// ErrNoPrice is returned by price-only edits without a price.
	ErrNoPrice = errors.New("no price given")
	// ErrNoGroups is returned by multi-tier edits without any group.
	ErrNoGroups = errors.New("multi-tier pricing needs at least one group")
	// ErrUnknownPriceScope is returned for an unrecognised price scope.
	ErrUnknownPriceScope = errors.New("unknown price scope")
)

// Mode selects how an edit treats availability and prices.
type Mode string

const (
	ModeAvailability Mode = "availability"
	ModePriceOnly    Mode = "price_only"
	ModeMultiTier    Mode = "multi_tier"
)

// Price scopes for price-only edits.
const (
	// PriceScopeAuto prices the requested seats, or every indexed seat when
	// no range text is given.
	PriceScopeAuto = "auto"
	// PriceScopeAll prices every indexed seat and ignores range text.
	PriceScopeAll = "all"
	// PriceScopeAvailable is PriceScopeAuto restricted to seats currently "av".
	PriceScopeAvailable = "available"
)

// Group is one pricing tier: the seats in RangeText get Price.
type Group struct {
	RangeText string `json:"range_text" yaml:"ranges"`
	Price     string `json:"price" yaml:"price"`
}

// Request is the full configuration of one apply action.  It is built fresh
// for every action; nothing carries over between requests.
type Request struct {
	RangeText   string  `json:"range_text"`
	GlobalPrice string  `json:"global_price"`
	PriceOnly   bool    `json:"price_only"`
	MultiTier   bool    `json:"multi_tier"`
	Groups      []Group `json:"groups"`
	// LimitToSelected marks every indexed seat outside the request "uav".
	// nil means true.
	LimitToSelected *bool  `json:"limit_to_selected,omitempty"`
	PriceScope      string `json:"price_scope,omitempty"`
}

// Limit reports whether the "limit to selected ranges" policy is active.
func (r Request) Limit() bool {
	return r.LimitToSelected == nil || *r.LimitToSelected
}

// Mode validates the request and returns the mode it selects.
func (r Request) Mode() (Mode, error) {
	switch {
	case r.PriceOnly && r.MultiTier:
		return "", ErrConflictingModes
	case r.MultiTier:
		if len(r.activeGroups()) == 0 {
			return "", ErrNoGroups
		}
		return ModeMultiTier, nil
	case r.PriceOnly:
		if strings.TrimSpace(r.GlobalPrice) == "" {
			return "", ErrNoPrice
		}
		switch r.scope() {
		case PriceScopeAuto, PriceScopeAll, PriceScopeAvailable:
		default:
			return "", ErrUnknownPriceScope
		}
		return ModePriceOnly, nil
	default:
		if strings.TrimSpace(r.RangeText) == "" {
			return "", ErrNoRanges
		}
		return ModeAvailability, nil
	}
}

func (r Request) scope() string {
	s := strings.ToLower(strings.TrimSpace(r.PriceScope))
	if s == "" {
		return PriceScopeAuto
	}
	return s
}

// activeGroups drops groups without range text; a price on its own targets
// no seats.
func (r Request) activeGroups() []Group {
	var out []Group
	for _, g := range r.Groups {
		g.RangeText = strings.TrimSpace(g.RangeText)
		g.Price = strings.TrimSpace(g.Price)
		if g.RangeText == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}
