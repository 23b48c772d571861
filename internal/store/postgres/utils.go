package postgres

import (
	"gorm.io/gorm"
)

func applySizeOffset(db *gorm.DB, size, offset int) *gorm.DB {
	if size > 0 {
		db = db.Limit(size)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}

func likePattern(q string) string {
	return "%" + q + "%"
}
