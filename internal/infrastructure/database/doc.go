// Package database provides the SQLite connection and schema migrations
// behind the flip schedule.
//
// The switcher reads today's flips; the daily job rewrites key-time flips.
// WAL mode lets the two processes share the file, and the busy timeout
// covers the moments they collide.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive: new columns are nullable or have defaults, and
// every .up.sql ships with a .down.sql.
package database
