package database

import (
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/utils"
)

// EnsureConstraints memverifikasi unique index yang menjadi tumpuan invariant
// occupancy: maksimal satu sesi aktif per meja dan per device. AutoMigrate
// membuatnya dari tag model; kalau hilang (schema lama), dibuat ulang di sini
// supaya invariant tetap struktural, bukan sekadar check-then-act di aplikasi.
func EnsureConstraints(db *gorm.DB) error {
	migrator := db.Migrator()

	type indexSpec struct {
		table string
		name  string
		sql   string
	}

	specs := []indexSpec{
		{
			table: "sessions",
			name:  "idx_sessions_active_table_id",
			sql:   "CREATE UNIQUE INDEX idx_sessions_active_table_id ON sessions(active_table_id)",
		},
		{
			table: "sessions",
			name:  "idx_sessions_active_device_id",
			sql:   "CREATE UNIQUE INDEX idx_sessions_active_device_id ON sessions(active_device_id)",
		},
	}

	for _, spec := range specs {
		if migrator.HasIndex(spec.table, spec.name) {
			continue
		}
		if err := db.Exec(spec.sql).Error; err != nil {
			utils.ErrorLogger.Printf("Error creating index %s: %v", spec.name, err)
			return err
		}
		utils.InfoLogger.Printf("Created missing unique index %s", spec.name)
	}

	return nil
}
