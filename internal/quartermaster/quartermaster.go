// Package quartermaster is the campaign inventory pool: ammunition stock
// keyed by munition and weapon, and shelves of spare parts. Take never hands
// out more than is on hand, and every transfer is serialized so that many
// bins across the campaign can draw from one pool.
package quartermaster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/unit"
	"github.com/OCAP2/armory/pkg/core"
)

const instrumentationName = "github.com/OCAP2/armory/internal/quartermaster"

// Transaction is one change to the ammunition pool.
type Transaction struct {
	Time     time.Time
	Munition string
	Weapon   string
	// Delta is positive for rounds returned and negative for rounds taken.
	Delta   int
	Balance int
}

// Ledger receives every pool transaction.
type Ledger interface {
	Record(ctx context.Context, tx Transaction) error
}

// Quartermaster implements parts.AmmoStock and parts.Warehouse.
type Quartermaster struct {
	mu     sync.Mutex
	stock  map[parts.StockKey]int
	spares []*parts.Part

	catalog *catalog.Catalog
	ledger  Ledger
	logger  *slog.Logger
	now     func() time.Time

	taken    metric.Int64Counter
	returned metric.Int64Counter
	short    metric.Int64Counter
}

var (
	_ parts.AmmoStock = (*Quartermaster)(nil)
	_ parts.Warehouse = (*Quartermaster)(nil)
)

// Option configures a Quartermaster.
type Option func(*Quartermaster)

// WithLedger records every stock transfer.
func WithLedger(l Ledger) Option {
	return func(q *Quartermaster) { q.ledger = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Quartermaster) { q.logger = l }
}

// WithClock overrides the transaction timestamp source.
func WithClock(now func() time.Time) Option {
	return func(q *Quartermaster) { q.now = now }
}

// New creates an empty pool. Metrics use the global OTel meter, which is a
// no-op unless a provider is installed.
func New(cat *catalog.Catalog, opts ...Option) (*Quartermaster, error) {
	q := &Quartermaster{
		stock:   make(map[parts.StockKey]int),
		catalog: cat,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}

	m := otel.Meter(instrumentationName)
	var err error
	q.taken, err = m.Int64Counter("quartermaster.shots.taken",
		metric.WithDescription("Rounds issued from the pool"))
	if err != nil {
		return nil, fmt.Errorf("creating taken counter: %w", err)
	}
	q.returned, err = m.Int64Counter("quartermaster.shots.returned",
		metric.WithDescription("Rounds returned to the pool"))
	if err != nil {
		return nil, fmt.Errorf("creating returned counter: %w", err)
	}
	q.short, err = m.Int64Counter("quartermaster.shots.short",
		metric.WithDescription("Rounds requested but not on hand"))
	if err != nil {
		return nil, fmt.Errorf("creating short counter: %w", err)
	}
	return q, nil
}

// Take removes up to n rounds and returns how many were removed.
func (q *Quartermaster) Take(key parts.StockKey, n int) int {
	if n <= 0 {
		return 0
	}
	q.mu.Lock()
	have := q.stock[key]
	got := min(have, n)
	q.set(key, have-got)
	q.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("munition", key.Munition))
	if got > 0 {
		q.taken.Add(context.Background(), int64(got), attrs)
		q.record(key, -got, have-got)
	}
	if got < n {
		q.short.Add(context.Background(), int64(n-got), attrs)
	}
	return got
}

// Give adds n rounds.
func (q *Quartermaster) Give(key parts.StockKey, n int) {
	if n <= 0 {
		return
	}
	q.mu.Lock()
	balance := q.stock[key] + n
	q.set(key, balance)
	q.mu.Unlock()

	q.returned.Add(context.Background(), int64(n),
		metric.WithAttributes(attribute.String("munition", key.Munition)))
	q.record(key, n, balance)
}

// Available returns the rounds on hand.
func (q *Quartermaster) Available(key parts.StockKey) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stock[key]
}

// must hold mu
func (q *Quartermaster) set(key parts.StockKey, n int) {
	if n == 0 {
		delete(q.stock, key)
		return
	}
	q.stock[key] = n
}

func (q *Quartermaster) record(key parts.StockKey, delta, balance int) {
	if q.ledger == nil {
		return
	}
	tx := Transaction{
		Time:     q.now(),
		Munition: key.Munition,
		Weapon:   key.Weapon,
		Delta:    delta,
		Balance:  balance,
	}
	if err := q.ledger.Record(context.Background(), tx); err != nil {
		q.logger.Warn("Failed to record ledger entry", "munition", key.Munition, "error", err)
	}
}

// AddTons adds whole tons of a munition to the pool and returns the rounds
// added. Munitions heavier than the requested tonnage are rejected.
func (q *Quartermaster) AddTons(typeID string, tons int) (int, error) {
	t, err := q.lookupAmmo(typeID)
	if err != nil {
		return 0, err
	}
	n := t.ShotsIn(float64(tons))
	if n <= 0 {
		return 0, fmt.Errorf("%d t of %s is less than one round", tons, typeID)
	}
	q.Give(parts.StockKey{Munition: t.ID}, n)
	return n, nil
}

// AddClips adds infantry clips of a munition for a weapon and returns the
// rounds added. Infantry bins only draw from stock keyed by their weapon.
func (q *Quartermaster) AddClips(typeID, weaponID string, clips int) (int, error) {
	t, err := q.lookupAmmo(typeID)
	if err != nil {
		return 0, err
	}
	w, err := q.catalog.Lookup(weaponID)
	if err != nil {
		return 0, err
	}
	if w.ShotsPerClip <= 0 {
		return 0, fmt.Errorf("%s does not use clips", weaponID)
	}
	if !w.Feeds(t) {
		return 0, fmt.Errorf("%s cannot fire %s", weaponID, typeID)
	}
	if clips < 1 {
		return 0, fmt.Errorf("invalid clip count %d", clips)
	}
	n := clips * w.ShotsPerClip
	q.Give(parts.StockKey{Munition: t.ID, Weapon: w.ID}, n)
	return n, nil
}

func (q *Quartermaster) lookupAmmo(typeID string) (*catalog.EquipmentType, error) {
	t, err := q.catalog.Lookup(typeID)
	if err != nil {
		return nil, err
	}
	if !t.IsAmmo() {
		return nil, fmt.Errorf("%s is not ammunition", typeID)
	}
	return t, nil
}

// FindSpare returns the first unattached spare matching the predicate.
func (q *Quartermaster) FindSpare(match func(*parts.Part) bool) (*parts.Part, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range q.spares {
		if p.Quantity > 0 && match(p) {
			return p, true
		}
	}
	return nil, false
}

// ConsumeSpare removes one unit of a spare; the entry goes away at zero.
func (q *Quartermaster) ConsumeSpare(p *parts.Part) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, s := range q.spares {
		if s != p {
			continue
		}
		s.Quantity--
		if s.Quantity <= 0 {
			q.spares = append(q.spares[:i], q.spares[i+1:]...)
		}
		return
	}
}

// AddSpare shelves a detached part, folding it into an interchangeable
// spare when one exists.
func (q *Quartermaster) AddSpare(p *parts.Part) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := max(p.Quantity, 1)
	for _, s := range q.spares {
		if s.IsSamePartType(p) {
			s.Quantity += n
			q.logger.Debug("Merged spare", "type", p.TypeID, "quantity", s.Quantity)
			return
		}
	}
	p.Quantity = n
	q.spares = append(q.spares, p)
	q.logger.Debug("Shelved spare", "type", p.TypeID)
}

// Spares returns a copy of the spare shelf.
func (q *Quartermaster) Spares() []*parts.Part {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*parts.Part, len(q.spares))
	copy(out, q.spares)
	return out
}

// SpareCount returns the number of spares of a type.
func (q *Quartermaster) SpareCount(typeID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, s := range q.spares {
		if s.TypeID == typeID {
			n += s.Quantity
		}
	}
	return n
}

// Snapshot returns the pool contents sorted by munition then weapon.
func (q *Quartermaster) Snapshot() ([]core.StockRecord, []core.PartRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	stock := make([]core.StockRecord, 0, len(q.stock))
	for k, n := range q.stock {
		stock = append(stock, core.StockRecord{Munition: k.Munition, Weapon: k.Weapon, Shots: n})
	}
	sort.Slice(stock, func(i, j int) bool {
		if stock[i].Munition != stock[j].Munition {
			return stock[i].Munition < stock[j].Munition
		}
		return stock[i].Weapon < stock[j].Weapon
	})
	spares := make([]core.PartRecord, 0, len(q.spares))
	for _, s := range q.spares {
		spares = append(spares, s.Record())
	}
	return stock, spares
}

// Restore replaces the pool contents. Spares of unknown types are logged
// and dropped.
func (q *Quartermaster) Restore(stock []core.StockRecord, spares []core.PartRecord) {
	q.mu.Lock()
	q.stock = make(map[parts.StockKey]int, len(stock))
	for _, s := range stock {
		if s.Shots > 0 {
			q.stock[parts.StockKey{Munition: s.Munition, Weapon: s.Weapon}] += s.Shots
		}
	}
	q.spares = nil
	q.mu.Unlock()

	for _, rec := range spares {
		p, err := parts.PartFromRecord(rec, q.catalog)
		if err != nil {
			q.logger.Warn("Dropping spare record", "type", rec.TypeID, "error", err)
			continue
		}
		p.Mount = unit.NoMount
		q.AddSpare(p)
	}
}
