package worker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/armory/internal/dispatcher"
	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/scheduler"
)

// RegisterHandlers registers all campaign actions with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Slot actions - sync, the caller wants the outcome
	d.Register("fix", m.locked(m.handleFix), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("scrap", m.locked(m.handleScrap), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("unload", m.locked(m.handleUnload), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("reload", m.locked(m.handleReload), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("munition", m.locked(m.handleMunition), dispatcher.Logged(), dispatcher.Usage("<unit> <mount> <ammo type>"))
	d.Register("capacity", m.locked(m.handleCapacity), dispatcher.Logged(), dispatcher.Usage("<unit> <mount> <size>"))
	d.Register("link", m.locked(m.handleLink), dispatcher.Logged(), dispatcher.Usage("<unit> <mount> <mount>"))

	// Scheduler
	d.Register("repair", m.locked(m.handleRepair), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("salvage", m.locked(m.handleSalvage), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("cancel", m.locked(m.handleCancel), dispatcher.Logged(), dispatcher.Usage("<unit> <mount>"))
	d.Register("refresh", m.locked(m.handleRefresh), dispatcher.Logged())
	d.Register("advance", m.locked(m.handleAdvance), dispatcher.Logged(), dispatcher.Usage("[days]"))

	// Inspection
	d.Register("status", m.locked(m.handleStatus), dispatcher.Usage("[unit]"))
	d.Register("stock", m.locked(m.handleStock), dispatcher.Usage("[ammo type] [tons|clips] [infantry weapon]"))

	// Persistence - buffered so autosave never waits on a slow backend
	d.Register("save", m.handleSave, dispatcher.Buffered(1), dispatcher.Blocking(), dispatcher.Logged())
}

func (m *Manager) locked(h dispatcher.HandlerFunc) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		return h(e)
	}
}

func (m *Manager) handleFix(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	r := t.entry.Roster
	if reason := r.CheckFixable(t.mount); reason != "" {
		return string(reason), nil
	}
	if err := r.Fix(t.mount, m.deps.Campaign.Scheduler().Checks()); err != nil {
		return nil, fmt.Errorf("fix %s mount %d: %w", t.entry.Unit.Name, t.mount, err)
	}
	m.deps.Campaign.Touch()
	if r.NeedsFixing(t.mount) {
		return "more work needed", nil
	}
	return "fixed", nil
}

func (m *Manager) handleScrap(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	if err := t.entry.Roster.Remove(t.mount, false); err != nil {
		return nil, fmt.Errorf("scrap %s mount %d: %w", t.entry.Unit.Name, t.mount, err)
	}
	m.deps.Campaign.Touch()
	return "scrapped", nil
}

func (m *Manager) handleUnload(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	n, err := t.entry.Roster.Unload(t.mount)
	if err != nil {
		return nil, fmt.Errorf("unload %s mount %d: %w", t.entry.Unit.Name, t.mount, err)
	}
	m.deps.Campaign.Touch()
	return fmt.Sprintf("returned %d rounds", n), nil
}

func (m *Manager) handleReload(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	n, err := t.entry.Roster.LoadBin(t.mount)
	if err != nil {
		return nil, fmt.Errorf("reload %s mount %d: %w", t.entry.Unit.Name, t.mount, err)
	}
	m.deps.Campaign.Touch()
	return fmt.Sprintf("loaded %d rounds", n), nil
}

func (m *Manager) handleMunition(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	if len(e.Args) < 3 {
		return nil, fmt.Errorf("missing ammo type")
	}
	if err := t.entry.Roster.ChangeMunition(t.mount, e.Args[2]); err != nil {
		return nil, fmt.Errorf("munition %s mount %d: %w", t.entry.Unit.Name, t.mount, err)
	}
	m.deps.Campaign.Touch()
	return "munition set to " + e.Args[2], nil
}

func (m *Manager) handleCapacity(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	if len(e.Args) < 3 {
		return nil, fmt.Errorf("missing size")
	}
	size, err := strconv.ParseFloat(e.Args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid size %q: %w", e.Args[2], err)
	}
	if err := t.entry.Roster.ChangeCapacity(t.mount, size); err != nil {
		return nil, fmt.Errorf("capacity %s mount %d: %w", t.entry.Unit.Name, t.mount, err)
	}
	m.deps.Campaign.Touch()
	return fmt.Sprintf("capacity set to %g", size), nil
}

func (m *Manager) handleLink(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	if len(e.Args) < 3 {
		return nil, fmt.Errorf("missing partner mount")
	}
	other, err := strconv.Atoi(e.Args[2])
	if err != nil {
		return nil, fmt.Errorf("invalid mount %q: %w", e.Args[2], err)
	}
	if err := t.entry.Roster.LinkPartners(t.mount, other); err != nil {
		return nil, fmt.Errorf("link %s mounts %d and %d: %w", t.entry.Unit.Name, t.mount, other, err)
	}
	m.deps.Campaign.Touch()
	return fmt.Sprintf("linked %d and %d", t.mount, other), nil
}

func (m *Manager) enqueue(e dispatcher.Event, salvage bool) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	task := scheduler.Task{Unit: t.entry.Unit.ID, Mount: t.mount, Salvage: salvage}
	if !m.deps.Campaign.Scheduler().Enqueue(task) {
		return "already queued", nil
	}
	m.deps.Campaign.Touch()
	return "queued", nil
}

func (m *Manager) handleRepair(e dispatcher.Event) (any, error)  { return m.enqueue(e, false) }
func (m *Manager) handleSalvage(e dispatcher.Event) (any, error) { return m.enqueue(e, true) }

func (m *Manager) handleCancel(e dispatcher.Event) (any, error) {
	t, err := m.resolve(e.Args)
	if err != nil {
		return nil, err
	}
	if !m.deps.Campaign.Scheduler().Cancel(t.entry.Unit.ID, t.mount) {
		return "nothing queued", nil
	}
	m.deps.Campaign.Touch()
	return "cancelled", nil
}

func (m *Manager) handleRefresh(e dispatcher.Event) (any, error) {
	n := m.deps.Campaign.Refresh()
	return fmt.Sprintf("queued %d tasks", n), nil
}

func (m *Manager) handleAdvance(e dispatcher.Event) (any, error) {
	days := 1
	if len(e.Args) > 0 {
		var err error
		if days, err = strconv.Atoi(e.Args[0]); err != nil || days < 1 {
			return nil, fmt.Errorf("invalid day count %q", e.Args[0])
		}
	}
	results, err := m.deps.Campaign.Advance(e.Ctx(), days)
	if err != nil {
		return nil, err
	}
	return m.formatResults(results), nil
}

func (m *Manager) formatResults(results []scheduler.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d tasks worked, %d pending\n",
		m.deps.Campaign.Day().Format("2006-01-02"), len(results), len(m.deps.Campaign.Scheduler().Pending()))
	for _, res := range results {
		name := res.Task.Unit.String()
		if entry, ok := m.deps.Campaign.Units().Get(res.Task.Unit); ok {
			name = entry.Unit.Name
		}
		fmt.Fprintf(&b, "  %-20s mount %-3d %-10s %4d min", name, res.Task.Mount, res.Outcome, res.Minutes)
		switch {
		case res.Reason != "":
			fmt.Fprintf(&b, "  %s", res.Reason)
		case res.Err != nil:
			fmt.Fprintf(&b, "  %v", res.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Manager) handleStatus(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return m.campaignStatus(), nil
	}
	entry, err := m.deps.Campaign.Find(e.Args[0])
	if err != nil {
		return nil, err
	}
	return unitStatus(entry), nil
}

// handleStock lists the pool or adds ammunition. With a weapon the amount
// is a clip count and the rounds are keyed to that weapon.
func (m *Manager) handleStock(e dispatcher.Event) (any, error) {
	qm := m.deps.Campaign.Quartermaster()
	if len(e.Args) < 2 {
		return stockStatus(qm, e.Args), nil
	}
	amount, err := strconv.Atoi(e.Args[1])
	if err != nil || amount < 1 {
		return nil, fmt.Errorf("invalid amount %q", e.Args[1])
	}
	if len(e.Args) >= 3 {
		weapon := e.Args[2]
		n, err := qm.AddClips(e.Args[0], weapon, amount)
		if err != nil {
			return nil, err
		}
		m.deps.Campaign.Touch()
		return fmt.Sprintf("added %d clips (%d rounds) of %s for %s, %d rounds on hand", amount, n, e.Args[0], weapon,
			qm.Available(parts.StockKey{Munition: e.Args[0], Weapon: weapon})), nil
	}
	n, err := qm.AddTons(e.Args[0], amount)
	if err != nil {
		return nil, err
	}
	m.deps.Campaign.Touch()
	return fmt.Sprintf("added %d t (%d rounds) of %s, %d rounds on hand", amount, n, e.Args[0],
		qm.Available(parts.StockKey{Munition: e.Args[0]})), nil
}

func (m *Manager) handleSave(e dispatcher.Event) (any, error) {
	return m.Save(e.Ctx())
}
