package worker

import (
	"fmt"
	"strings"

	"github.com/OCAP2/armory/internal/cache"
	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/quartermaster"
)

func (m *Manager) campaignStatus() string {
	c := m.deps.Campaign
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  units=%d pending=%d unsaved=%d\n",
		c.Name(), c.Day().Format("2006-01-02"), c.Units().Len(), len(c.Scheduler().Pending()), c.Changes())
	for _, e := range c.Units().All() {
		needs := 0
		for _, idx := range e.Roster.Indexes() {
			if e.Roster.NeedsFixing(idx) {
				needs++
			}
		}
		fmt.Fprintf(&b, "  %-20s %-12s %6gt  slots=%-3d needs work=%d\n",
			e.Unit.Name, e.Unit.Kind, e.Unit.Tonnage, len(e.Roster.Indexes()), needs)
	}
	return b.String()
}

func unitStatus(e cache.Entry) string {
	r := e.Roster
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %gt)\n", e.Unit.Name, e.Unit.Kind, e.Unit.Tonnage)
	for _, idx := range r.Indexes() {
		if mp, ok := r.Missing(idx); ok {
			fmt.Fprintf(&b, "  %3d  %-28s %-10s MISSING", idx, mp.TypeID, mp.Kind)
		} else if p, ok := r.Part(idx); ok {
			fmt.Fprintf(&b, "  %3d  %-28s %-10s", idx, p.TypeID, p.Kind)
			writePartState(&b, e, p)
			fmt.Fprintf(&b, "  %s C", r.Value(idx).StringFixed(0))
		}
		if r.NeedsFixing(idx) {
			if reason := r.CheckFixable(idx); reason != "" {
				fmt.Fprintf(&b, "  [%s]", reason)
			} else {
				b.WriteString("  [needs work]")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func writePartState(b *strings.Builder, e cache.Entry, p *parts.Part) {
	if p.Bin != nil {
		full, _ := e.Roster.FullShots(p.Mount)
		fmt.Fprintf(b, " %d/%d %s", e.Unit.CurrentLoad(p.Mount), full, p.Bin.Kind)
		if p.Bin.Size > 0 {
			fmt.Fprintf(b, " size=%g", p.Bin.Size)
		}
	}
	if p.Hits > 0 {
		fmt.Fprintf(b, " hits=%d", p.Hits)
	}
	if p.Salvaging {
		b.WriteString(" salvaging")
	}
}

// stockStatus lists the pool, optionally filtered to munitions whose ID
// contains the first argument. Rounds keyed to an infantry weapon show it.
func stockStatus(qm *quartermaster.Quartermaster, args []string) string {
	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}
	stock, _ := qm.Snapshot()
	var b strings.Builder
	for _, s := range stock {
		if filter != "" && !strings.Contains(s.Munition, filter) {
			continue
		}
		weapon := s.Weapon
		if weapon == "" {
			weapon = "-"
		}
		fmt.Fprintf(&b, "%-32s %-20s %6d\n", s.Munition, weapon, s.Shots)
	}
	for _, p := range qm.Spares() {
		if filter != "" && !strings.Contains(p.TypeID, filter) {
			continue
		}
		fmt.Fprintf(&b, "spare %-26s %-20s x%d\n", p.TypeID, p.Kind, p.Quantity)
	}
	if b.Len() == 0 {
		return "pool is empty\n"
	}
	return b.String()
}
