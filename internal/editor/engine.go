package editor

import (
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/seatmap-editor/internal/model"
	"github.com/iliyamo/seatmap-editor/internal/seatrange"
)

// SeatSummary describes one seat in a result list.
type SeatSummary struct {
	Seat    string `json:"seat"`
	Section string `json:"section"`
	Row     string `json:"row"`
	Label   string `json:"label"`
	Status  string `json:"status"`
	Price   string `json:"price,omitempty"`
	Blocked bool   `json:"blocked,omitempty"`
	Tier    int    `json:"tier,omitempty"`
}

// Result reports what an apply action matched and changed.
type Result struct {
	Mode       Mode                 `json:"mode"`
	Requested  int                  `json:"requested"`
	Matched    []SeatSummary        `json:"matched"`
	Missing    []string             `json:"missing"`
	Updated    []SeatSummary        `json:"updated"`
	Unparsed   []seatrange.Unparsed `json:"unparsed"`
	Collisions []Collision          `json:"collisions"`
	// Overlaps counts seats claimed by more than one multi-tier group.
	Overlaps     int      `json:"overlaps"`
	Blocked      []string `json:"blocked"`
	RowsRepriced int      `json:"rows_repriced"`
	Available    int      `json:"available"`
	Unavailable  int      `json:"unavailable"`
	Unindexed    int      `json:"unindexed"`
}

// Engine applies edit requests to documents.  It holds no per-document state
// and may be shared.
type Engine struct {
	log *zap.Logger
}

// NewEngine returns an Engine logging to log; nil disables logging.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// plan is a request resolved against an index: which keys were asked for
// and which price each claimed key receives.
type plan struct {
	mode      Mode
	requested *seatrange.KeySet
	prices    map[seatrange.SeatKey]string
	tiers     map[seatrange.SeatKey]int
	unparsed  []seatrange.Unparsed
	overlaps  int
}

// Apply validates req, resolves it against doc and mutates doc in place.
// Only a request that selects no valid mode is an error; unparsed text and
// missing seats are reported in the Result.
func (e *Engine) Apply(doc *model.Document, req Request) (*Result, error) {
	mode, err := req.Mode()
	if err != nil {
		return nil, err
	}
	idx := BuildIndex(doc, e.log)
	p := e.plan(idx, req, mode)
	res := e.mutate(doc, idx, req, p)
	res.RowsRepriced = AggregateRowPrices(doc)
	e.log.Info("seat map edit applied",
		zap.String("mode", string(mode)),
		zap.Int("requested", res.Requested),
		zap.Int("matched", len(res.Matched)),
		zap.Int("missing", len(res.Missing)),
		zap.Int("updated", len(res.Updated)),
		zap.Int("unparsed", len(res.Unparsed)),
		zap.Int("blocked", len(res.Blocked)))
	return res, nil
}

// Preview resolves req against doc without changing anything.  The returned
// Result has Matched, Missing, Unparsed and Overlaps filled in.
func (e *Engine) Preview(doc *model.Document, req Request) (*Result, error) {
	mode, err := req.Mode()
	if err != nil {
		return nil, err
	}
	idx := BuildIndex(doc, e.log)
	p := e.plan(idx, req, mode)
	res := newResult(idx, p)
	e.collect(idx, p, res)
	return res, nil
}

func (e *Engine) plan(idx *Index, req Request, mode Mode) plan {
	p := plan{
		mode:      mode,
		requested: seatrange.NewKeySet(),
		prices:    map[seatrange.SeatKey]string{},
		tiers:     map[seatrange.SeatKey]int{},
	}
	switch mode {
	case ModeMultiTier:
		overlapping := map[seatrange.SeatKey]bool{}
		for i, g := range req.activeGroups() {
			parsed := idx.Parse(g.RangeText)
			p.unparsed = append(p.unparsed, parsed.Unparsed...)
			for _, k := range parsed.Keys.Keys() {
				if !p.requested.Add(k) {
					// first group to claim a seat keeps it
					overlapping[k] = true
					continue
				}
				p.tiers[k] = i + 1
				if g.Price != "" {
					p.prices[k] = g.Price
				}
			}
		}
		p.overlaps = len(overlapping)
	default:
		if mode == ModePriceOnly && req.scope() == PriceScopeAll {
			break
		}
		parsed := idx.Parse(req.RangeText)
		p.unparsed = parsed.Unparsed
		p.requested = parsed.Keys
		if mode == ModeAvailability {
			if price := strings.TrimSpace(req.GlobalPrice); price != "" {
				for _, k := range p.requested.Keys() {
					p.prices[k] = price
				}
			}
		}
	}
	return p
}

// mutate computes every seat's final status and price once, then writes
// them, so re-running an identical request changes nothing.
func (e *Engine) mutate(doc *model.Document, idx *Index, req Request, p plan) *Result {
	res := newResult(idx, p)

	blocked := map[*model.Seat]bool{}
	doc.EachSeat(func(sec *model.Section, _ string, _ *model.Row, _ string, seat *model.Seat) {
		if !sec.IsAOI() && IsBlocked(seat) {
			blocked[seat] = true
		}
	})

	globalPrice := strings.TrimSpace(req.GlobalPrice)
	priceAll := p.mode == ModePriceOnly && (req.scope() == PriceScopeAll || strings.TrimSpace(req.RangeText) == "")
	onlyAvailable := p.mode == ModePriceOnly && req.scope() == PriceScopeAvailable

	idx.Each(func(ref *SeatRef) {
		seat := ref.Seat
		status := seat.Status
		price := seat.Price
		requested := p.requested.Has(ref.Key)

		switch p.mode {
		case ModeAvailability, ModeMultiTier:
			if requested {
				status = model.StatusAvailable
			} else if req.Limit() {
				status = model.StatusUnavailable
			}
			if v, ok := p.prices[ref.Key]; ok {
				price = &v
			}
		case ModePriceOnly:
			if (priceAll || requested) && (!onlyAvailable || seat.Available()) {
				v := globalPrice
				price = &v
			}
		}
		if blocked[seat] {
			status = model.StatusUnavailable
		}
		if e.write(seat, status, price) {
			res.Updated = append(res.Updated, summarize(ref, p, blocked[seat]))
		}
	})

	// blocked seats outside the index (unsupported or colliding labels) are
	// still forced unavailable
	doc.EachSeat(func(sec *model.Section, _ string, _ *model.Row, _ string, seat *model.Seat) {
		if !blocked[seat] {
			return
		}
		seat.Status = model.StatusUnavailable
		res.Blocked = append(res.Blocked, sec.DisplayName()+" "+strings.TrimSpace(seat.Number))
	})

	e.collect(idx, p, res)
	idx.Each(func(ref *SeatRef) {
		if ref.Seat.Available() {
			res.Available++
		} else {
			res.Unavailable++
		}
	})
	return res
}

func newResult(idx *Index, p plan) *Result {
	res := &Result{
		Mode:       p.mode,
		Updated:    []SeatSummary{},
		Unparsed:   p.unparsed,
		Collisions: idx.Collisions,
		Overlaps:   p.overlaps,
		Blocked:    []string{},
		Unindexed:  idx.Unindexed,
	}
	if res.Unparsed == nil {
		res.Unparsed = []seatrange.Unparsed{}
	}
	if res.Collisions == nil {
		res.Collisions = []Collision{}
	}
	return res
}

// write stores status and price on seat and reports whether either changed.
func (e *Engine) write(seat *model.Seat, status string, price *string) bool {
	changed := false
	if status != seat.Status {
		seat.Status = status
		changed = true
	}
	if price != nil && (seat.Price == nil || *seat.Price != *price) {
		v := *price
		seat.Price = &v
		changed = true
	}
	return changed
}

// collect fills Requested, Matched and Missing in request order.
func (e *Engine) collect(idx *Index, p plan, res *Result) {
	res.Requested = p.requested.Len()
	res.Matched = []SeatSummary{}
	res.Missing = []string{}
	for _, k := range p.requested.Keys() {
		ref, ok := idx.Lookup(k)
		if !ok {
			res.Missing = append(res.Missing, idx.DisplayKey(k))
			continue
		}
		res.Matched = append(res.Matched, summarize(ref, p, IsBlocked(ref.Seat)))
	}
}

func summarize(ref *SeatRef, p plan, blocked bool) SeatSummary {
	return SeatSummary{
		Seat:    ref.Display(),
		Section: ref.SectionName,
		Row:     ref.RowKey,
		Label:   ref.Seat.Number,
		Status:  ref.Seat.Status,
		Price:   ref.Seat.PriceText(),
		Blocked: blocked,
		Tier:    p.tiers[ref.Key],
	}
}
