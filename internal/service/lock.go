package service

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate 给查询加行级写锁
// SQLite 不支持 FOR UPDATE 语法，其单写事务本身就能串行化写入
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
