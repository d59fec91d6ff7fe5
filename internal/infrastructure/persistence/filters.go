package persistence

import (
	"time"

	"gorm.io/gorm"
)

// dayRange restricts a date column to the whole days from..to, both inclusive
func dayRange(query *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil && !from.IsZero() {
		query = query.Where(column+" >= ?", startOfDay(*from))
	}
	if to != nil && !to.IsZero() {
		query = query.Where(column+" < ?", startOfDay(*to).AddDate(0, 0, 1))
	}
	return query
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
