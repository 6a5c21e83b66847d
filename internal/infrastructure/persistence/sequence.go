package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextYearlyNumber returns the next "<PREFIX>-YYYY-NNNNN" number for column
// of table, one above the highest number issued this year. Longer numbers
// sort first so the sequence keeps counting past 99999. The unique index on
// the column rejects the rare collision between concurrent writers.
func nextYearlyNumber(ctx context.Context, db *gorm.DB, table, column, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	var last []string
	if err := db.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", yearPrefix+"%").
		Order("LENGTH("+column+") DESC").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &last).Error; err != nil {
		return "", err
	}

	var next int64 = 1
	if len(last) > 0 {
		var num int64
		if _, err := fmt.Sscanf(strings.TrimPrefix(last[0], yearPrefix), "%d", &num); err == nil {
			next = num + 1
		}
	}
	return fmt.Sprintf("%s%05d", yearPrefix, next), nil
}
