// Package journal records the lifecycle of scheduled events into a gorm database.
//
// Journal implements scheduler.LoopHooks. Hooks only buffer records in memory;
// they are written by Flush, which Run calls periodically.
// The journal is an audit trail. Pending events are never restored from it.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/glebarez/sqlite"
	"github.com/ngicks/gapsched/common"
	"github.com/ngicks/gapsched/scheduler"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultFlushInterval = time.Second

var ErrClosed = errors.New("journal closed")

var _ scheduler.LoopHooks = (*Journal)(nil)

type Journal struct {
	db            *gorm.DB
	getNow        common.GetNow
	newTicker     common.TickerFactory
	flushInterval time.Duration
	batchSize     int
	logger        scheduler.Logger

	mu      sync.Mutex
	seq     uint64
	pending *queue.Queue
	closed  bool

	flushMu sync.Mutex
}

type Option func(j *Journal)

// WithFlushInterval sets the interval of Run.
//
// panic: if interval is not positive.
func WithFlushInterval(interval time.Duration) Option {
	if interval <= 0 {
		panic(fmt.Errorf("%w: flush interval must be positive but is %s", scheduler.ErrInvalidArg, interval))
	}
	return func(j *Journal) {
		j.flushInterval = interval
	}
}

func WithNowGetter(getNow common.GetNow) Option {
	return func(j *Journal) {
		if getNow != nil {
			j.getNow = getNow
		}
	}
}

func WithTickerFactory(newTicker common.TickerFactory) Option {
	return func(j *Journal) {
		if newTicker != nil {
			j.newTicker = newTicker
		}
	}
}

// WithLogger sets the logger Run reports flush errors to. nil disables it.
func WithLogger(logger scheduler.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// WithBatchSize sets how many records are inserted per statement.
func WithBatchSize(size int) Option {
	return func(j *Journal) {
		if size > 0 {
			j.batchSize = size
		}
	}
}

// OpenDB opens the sqlite database at path.
func OpenDB(path string, opts ...gorm.Option) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), opts...)
}

// Open opens the sqlite database at path and creates a Journal on it with default options.
func Open(path string, opts ...gorm.Option) (*Journal, error) {
	db, err := OpenDB(path, opts...)
	if err != nil {
		return nil, err
	}
	return New(db)
}

// New creates a Journal on db, migrating the schema of Record.
func New(db *gorm.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db is nil", scheduler.ErrInvalidArg)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}

	j := &Journal{
		db:            db,
		getNow:        common.GetNowImpl{},
		newTicker:     common.NewTickerImpl,
		flushInterval: DefaultFlushInterval,
		batchSize:     100,
		logger:        scheduler.NewStdLogger(nil),
		pending:       queue.New(),
	}
	for _, opt := range options {
		opt(j)
	}

	var maxSeq sql.NullInt64
	if err := db.Model(&Record{}).Select("MAX(seq)").Row().Scan(&maxSeq); err != nil {
		return nil, err
	}
	if maxSeq.Valid {
		j.seq = uint64(maxSeq.Int64)
	}
	return j, nil
}

func (j *Journal) DB() *gorm.DB {
	return j.db
}

func (j *Journal) OnScheduled(ev scheduler.Event) {
	j.add(fromEvent(Scheduled, ev, j.getNow.GetNow()))
}

func (j *Journal) OnCancelled(ev scheduler.Event) {
	j.add(fromEvent(Cancelled, ev, j.getNow.GetNow()))
}

func (j *Journal) OnDispatched(fired scheduler.Fired) {
	j.add(fromFired(fired, j.getNow.GetNow()))
}

func (j *Journal) OnDispatchError(err error) {
	var dispatchErr *scheduler.DispatchError
	if !errors.As(err, &dispatchErr) {
		return
	}
	j.add(fromDispatchError(dispatchErr, j.getNow.GetNow()))
}

func (j *Journal) add(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	j.seq++
	r.Seq = j.seq
	j.pending.Add(r)
}

// Buffered returns the number of records not written yet.
func (j *Journal) Buffered() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pending.Length()
}

// Flush writes buffered records in a transaction.
// Records stay buffered if the transaction fails and are retried on next Flush.
func (j *Journal) Flush(ctx context.Context) (written int, err error) {
	j.flushMu.Lock()
	defer j.flushMu.Unlock()

	j.mu.Lock()
	records := make([]Record, j.pending.Length())
	for i := range records {
		records[i] = j.pending.Get(i).(Record)
	}
	j.mu.Unlock()

	if len(records) == 0 {
		return 0, nil
	}

	err = j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&records, j.batchSize).
			Error
	})
	if err != nil {
		return 0, err
	}

	// only Flush removes, and flushMu is held; the first len(records) are the ones written.
	j.mu.Lock()
	for range records {
		j.pending.Remove()
	}
	j.mu.Unlock()
	return len(records), nil
}

// Run flushes every flush interval until ctx is cancelled, then flushes once more.
func (j *Journal) Run(ctx context.Context) error {
	if ctx == nil {
		return scheduler.ErrInvalidArg
	}

	ticker := j.newTicker(j.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_, err := j.Flush(context.Background())
			return err
		case <-ticker.GetChan():
			if _, err := j.Flush(ctx); err != nil && j.logger != nil && ctx.Err() == nil {
				j.logger.Error(err, "component", "journal", "op", "flush")
			}
		}
	}
}

// Close flushes buffered records and closes the underlying database.
// Records reported after Close are dropped.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	j.closed = true
	j.mu.Unlock()

	_, flushErr := j.Flush(context.Background())

	sqlDB, err := j.db.DB()
	if err != nil {
		return errors.Join(flushErr, err)
	}
	return errors.Join(flushErr, sqlDB.Close())
}
