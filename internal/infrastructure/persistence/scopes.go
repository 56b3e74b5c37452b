package persistence

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// StoreScope limits rows to the given stores. An empty list leaves the query
// unrestricted; callers short-circuit explicitly empty scopes before querying.
func StoreScope(storeIDs []uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(storeIDs) == 0 {
			return db
		}
		return db.Where("store_id IN ?", storeIDs)
	}
}

// TimeRangeScope applies inclusive bounds on column. Nil bounds are skipped.
func TimeRangeScope(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", start.UTC())
		}
		if end != nil {
			db = db.Where(column+" <= ?", end.UTC())
		}
		return db
	}
}
