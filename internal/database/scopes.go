package database

import (
	"gorm.io/gorm"
)

// Paginate limits a query to one page. Non-positive values disable paging.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// InWorkspace restricts a query on table to one workspace.
func InWorkspace(table string, workspaceID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".workspace_id = ?", workspaceID)
	}
}
