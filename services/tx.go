package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate menambahkan SELECT ... FOR UPDATE pada dialek yang
// mendukungnya. SQLite tidak mengenal FOR UPDATE, tapi writer-nya sudah
// terserialisasi oleh engine sehingga lock baris tidak diperlukan di sana.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
