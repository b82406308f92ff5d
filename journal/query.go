package journal

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Query narrows Find. Zero fields are ignored.
type Query struct {
	EventId string
	States  []State
	// Since and Until bound RecordedAt, Since inclusive and Until exclusive.
	Since, Until time.Time
	// PayloadEquals matches records whose payload has Value at the JSON path Keys.
	PayloadEquals []PayloadCond
	Limit         int
}

type PayloadCond struct {
	Keys  []string
	Value any
}

// Find returns records matching q in recording order.
func (j *Journal) Find(ctx context.Context, q Query) ([]Record, error) {
	tx := j.db.WithContext(ctx).Model(&Record{})
	tx = q.apply(tx)

	var records []Record
	if err := tx.Order("seq asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// History returns every record of the event in recording order.
func (j *Journal) History(ctx context.Context, eventId string) ([]Record, error) {
	return j.Find(ctx, Query{EventId: eventId})
}

// Count returns the number of records matching q. q.Limit is ignored.
func (j *Journal) Count(ctx context.Context, q Query) (int64, error) {
	q.Limit = 0
	var count int64
	err := q.apply(j.db.WithContext(ctx).Model(&Record{})).Count(&count).Error
	return count, err
}

// Prune deletes records recorded before t.
func (j *Journal) Prune(ctx context.Context, before time.Time) (deleted int64, err error) {
	result := j.db.WithContext(ctx).Where("recorded_at < ?", before).Delete(&Record{})
	return result.RowsAffected, result.Error
}

func (q Query) apply(tx *gorm.DB) *gorm.DB {
	if q.EventId != "" {
		tx = tx.Where("event_id = ?", q.EventId)
	}
	if len(q.States) > 0 {
		tx = tx.Where("state IN ?", q.States)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("recorded_at >= ?", q.Since)
	}
	if !q.Until.IsZero() {
		tx = tx.Where("recorded_at < ?", q.Until)
	}
	for _, cond := range q.PayloadEquals {
		tx = tx.Where(datatypes.JSONQuery("payload").Equals(cond.Value, cond.Keys...))
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx
}
