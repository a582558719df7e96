// Package database opens the relational database behind the integrity store.
//
// Connect wraps GORM and picks the dialect from Config.Driver: MySQL in production,
// SQLite for tests and single-node installs. All timestamps are handled in UTC so
// that both dialects compare them the same way.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live column set of a table. The schema
// check of the integrity feature uses them to verify a database before serving.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "file_info", []string{"file_id", "checksum"})
package database
