package cron

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ngicks/gapsched/common"
)

var ErrDuplicateName = errors.New("duplicate row name")

// Table is a named set of rows sharing one Scheduler.
type Table struct {
	mu        sync.Mutex
	scheduler Scheduler
	getNow    common.GetNow
	started   bool
	entries   map[string]*Rescheduler
}

// NewTable creates an empty Table. Rows start counting from getNow at the time they are scheduled.
// If getNow is nil, the wall clock is used.
func NewTable(scheduler Scheduler, getNow common.GetNow) *Table {
	if getNow == nil {
		getNow = common.GetNowImpl{}
	}
	return &Table{
		scheduler: scheduler,
		getNow:    getNow,
		entries:   make(map[string]*Rescheduler),
	}
}

// Add registers row under name. If the table is started, row is scheduled immediately.
func (t *Table) Add(name string, row RowLike, shouldReschedule func(payloadErr error, callCount int) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	ent := NewRescheduler(row, t.getNow.GetNow(), shouldReschedule, t.scheduler)
	t.entries[name] = ent
	if t.started {
		return ent.Schedule()
	}
	return nil
}

// AddRaw parses and registers every row of raws.
// Nothing is registered if any of them fails to parse.
func (t *Table) AddRaw(raws map[string]RowRaw) error {
	rows := make(map[string]Row, len(raws))
	for name, raw := range raws {
		row, err := raw.Parse()
		if err != nil {
			return fmt.Errorf("row %s: %w", name, err)
		}
		rows[name] = row
	}
	var errs []error
	for _, name := range sortedKeys(rows) {
		if err := t.Add(name, rows[name], nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove cancels and unregisters name.
func (t *Table) Remove(name string) (removed bool) {
	t.mu.Lock()
	ent, ok := t.entries[name]
	delete(t.entries, name)
	t.mu.Unlock()

	if ok {
		ent.Cancel()
	}
	return ok
}

func (t *Table) Get(name string) (*Rescheduler, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ent, ok := t.entries[name]
	return ent, ok
}

func (t *Table) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.entries)
}

// Start schedules every row. Errors of rows are joined; other rows are scheduled regardless.
// Rows already scheduled are left untouched.
func (t *Table) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = true
	var errs []error
	for _, name := range sortedKeys(t.entries) {
		err := t.entries[name].Schedule()
		if err != nil && !errors.Is(err, ErrAlreadyScheduled) {
			errs = append(errs, fmt.Errorf("row %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Stop cancels every row. Rows stay registered and can be started again.
func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = false
	for _, ent := range t.entries {
		ent.Cancel()
	}
}

// ParseTable decodes a JSON object of RowRaw keyed by name.
func ParseTable(data []byte) (map[string]RowRaw, error) {
	raws := make(map[string]RowRaw)
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
