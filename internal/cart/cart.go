// Package cart is the customer's shopping cart: an ordered set of food item
// snapshots with quantities, persisted to local storage after every change.
//
// A Store is safe for concurrent use. Mutations are applied, persisted and
// announced to subscribers one at a time in the order they acquire the store.
// Separate processes sharing the same storage are not coordinated; the last
// write wins.
package cart

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/localstore"
	"github.com/dukerupert/platter/internal/model"
)

// ErrCorrupt is reported by LoadErr when the persisted cart could not be
// decoded and the store started empty instead.
const ErrCorrupt = errors.ConstError("corrupt cart data")

// MaxQuantity is the largest quantity a single entry may hold.
const MaxQuantity = 10_000

// Entry is a snapshot of a food item taken when it was added, with the
// quantity wanted. Later menu changes do not alter the snapshot.
type Entry struct {
	Food     model.FoodItem `json:"food"`
	Quantity int            `json:"quantity"`
}

// Subtotal is the entry's price times its quantity.
func (e Entry) Subtotal() model.Price {
	return e.Food.Price.Mul(e.Quantity)
}

type EventKind string

const (
	EventAdded    EventKind = "added"
	EventRemoved  EventKind = "removed"
	EventQuantity EventKind = "quantity"
	EventCleared  EventKind = "cleared"
)

// Event describes a change that has already been persisted. Count is the
// number of entries in the cart after the change.
type Event struct {
	Kind   EventKind
	ItemID string
	Count  int
}

type subscriber struct {
	id int
	fn func(Event)
}

type Store struct {
	mu       sync.Mutex
	storage  localstore.Storage
	entries  []Entry
	loadErr  error
	subs     []subscriber
	nextSub  int
	notifyMu sync.Mutex
}

// Open returns a Store backed by storage with the persisted cart loaded.
func Open(storage localstore.Storage) (*Store, error) {
	s := &Store{storage: storage}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory cart with the persisted one. A missing value
// yields an empty cart. An undecodable value also yields an empty cart; the
// failure is kept for LoadErr rather than returned. Only storage failures are
// returned.
func (s *Store) Load() error {
	raw, ok, err := s.storage.Get(localstore.KeyCart)
	if err != nil {
		return errors.Annotate(err, "load cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.loadErr = nil
	if !ok {
		return nil
	}

	entries, err := decode(raw)
	if err != nil {
		s.loadErr = errors.Annotate(ErrCorrupt, err.Error())
		return nil
	}
	s.entries = entries
	return nil
}

func decode(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Food.ID) == "" {
			return nil, errors.NotValidf("entry without item id")
		}
		if e.Quantity < 1 || e.Quantity > MaxQuantity {
			return nil, errors.NotValidf("quantity %d for item %q", e.Quantity, e.Food.ID)
		}
		if seen[e.Food.ID] {
			return nil, errors.NotValidf("duplicate item %q", e.Food.ID)
		}
		seen[e.Food.ID] = true
	}
	if _, err := sum(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// sum totals entries, failing rather than wrapping when a subtotal or the
// running total does not fit in a Price.
func sum(entries []Entry) (model.Price, error) {
	var total model.Price
	for _, e := range entries {
		sub, ok := e.Food.Price.MulChecked(e.Quantity)
		if !ok {
			return 0, errors.NotValidf("subtotal of %d x %s for item %q", e.Quantity, e.Food.Price, e.Food.ID)
		}
		if total, ok = total.AddChecked(sub); !ok {
			return 0, errors.NotValidf("cart total")
		}
	}
	return total, nil
}

// LoadErr returns the decoding failure from the last Load, wrapping
// ErrCorrupt, or nil.
func (s *Store) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Recovered reports whether the last Load discarded corrupt data.
func (s *Store) Recovered() bool {
	return s.LoadErr() != nil
}

// Subscribe registers fn to be called after every persisted change. fn runs
// on the mutating goroutine and must not mutate the cart. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// commit persists next and, on success, installs it and notifies
// subscribers. It is called with s.mu held and releases it. A cart whose
// total would overflow is refused before anything is written.
func (s *Store) commit(next []Entry, ev Event) error {
	if _, err := sum(next); err != nil {
		s.mu.Unlock()
		return err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return errors.Annotate(err, "encode cart")
	}
	if err := s.storage.Set(localstore.KeyCart, raw); err != nil {
		s.mu.Unlock()
		return errors.Annotate(err, "save cart")
	}
	s.entries = next
	s.loadErr = nil
	ev.Count = len(next)
	subs := append([]subscriber(nil), s.subs...)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, sub := range subs {
		sub.fn(ev)
	}
	return nil
}

func (s *Store) indexOf(itemID string) int {
	for i, e := range s.entries {
		if e.Food.ID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) cloneEntries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// AddItem adds quantity of item. An item already in the cart has its
// quantity increased; a new one is appended. The resulting quantity may not
// exceed MaxQuantity.
func (s *Store) AddItem(item model.FoodItem, quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return errors.NotValidf("quantity %d", quantity)
	}
	if strings.TrimSpace(item.ID) == "" {
		return errors.NotValidf("food item without id")
	}

	s.mu.Lock()
	next := s.cloneEntries()
	if i := s.indexOf(item.ID); i >= 0 {
		if next[i].Quantity > MaxQuantity-quantity {
			s.mu.Unlock()
			return errors.NotValidf("quantity %d + %d for item %q", next[i].Quantity, quantity, item.ID)
		}
		next[i].Quantity += quantity
	} else {
		next = append(next, Entry{Food: item, Quantity: quantity})
	}
	return s.commit(next, Event{Kind: EventAdded, ItemID: item.ID})
}

// RemoveItem deletes the entry for itemID. It reports whether anything was
// removed; removing an absent item is not an error.
func (s *Store) RemoveItem(itemID string) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(itemID)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:i]...)
	next = append(next, s.entries[i+1:]...)
	if err := s.commit(next, Event{Kind: EventRemoved, ItemID: itemID}); err != nil {
		return false, err
	}
	return true, nil
}

// SetQuantity sets the quantity of an existing entry. Quantities below one
// are ignored, as are unknown items and unchanged quantities; it reports
// whether the cart changed. Quantities above MaxQuantity are not valid.
func (s *Store) SetQuantity(itemID string, quantity int) (bool, error) {
	if quantity < 1 {
		return false, nil
	}
	if quantity > MaxQuantity {
		return false, errors.NotValidf("quantity %d", quantity)
	}

	s.mu.Lock()
	i := s.indexOf(itemID)
	if i < 0 || s.entries[i].Quantity == quantity {
		s.mu.Unlock()
		return false, nil
	}
	next := s.cloneEntries()
	next[i].Quantity = quantity
	if err := s.commit(next, Event{Kind: EventQuantity, ItemID: itemID}); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return nil
	}
	return s.commit([]Entry{}, Event{Kind: EventCleared})
}

// Total sums price times quantity over all entries. An empty cart totals 0.
// Entries are only installed once their total is known to fit, so the sum
// cannot overflow here.
func (s *Store) Total() model.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, _ := sum(s.entries)
	return total
}

func (s *Store) Contains(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(itemID) >= 0
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneEntries()
}

// Len is the number of distinct items, as shown on the cart badge.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Quantity is the total number of units across all entries.
func (s *Store) Quantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		n += e.Quantity
	}
	return n
}

// MenuSource looks up the live version of a food item. A nil item with a nil
// error means the item no longer exists.
type MenuSource interface {
	GetFoodItem(ctx context.Context, itemID string) (*model.FoodItem, error)
}

type DiscrepancyKind string

const (
	DiscrepancyMissing      DiscrepancyKind = "missing"
	DiscrepancyPriceChanged DiscrepancyKind = "price_changed"
)

// Discrepancy is a difference between a cart snapshot and the live menu.
type Discrepancy struct {
	ItemID string
	Name   string
	Kind   DiscrepancyKind
	Old    model.Price
	New    model.Price
}

// Revalidate compares every snapshot with the live menu, in cart order. The
// cart itself is not modified.
func (s *Store) Revalidate(ctx context.Context, src MenuSource) ([]Discrepancy, error) {
	var out []Discrepancy
	for _, e := range s.Entries() {
		live, err := src.GetFoodItem(ctx, e.Food.ID)
		if err != nil {
			return nil, errors.Annotatef(err, "revalidate item %q", e.Food.ID)
		}
		switch {
		case live == nil:
			out = append(out, Discrepancy{ItemID: e.Food.ID, Name: e.Food.Name, Kind: DiscrepancyMissing, Old: e.Food.Price})
		case live.Price != e.Food.Price:
			out = append(out, Discrepancy{ItemID: e.Food.ID, Name: e.Food.Name, Kind: DiscrepancyPriceChanged, Old: e.Food.Price, New: live.Price})
		}
	}
	return out, nil
}
