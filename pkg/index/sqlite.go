package index

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/backup-rotator/pkg/archive"
)

func NewSQLLite(dbpath string) (*SQLLiteIndex, error) {
	rawDB, err := sql.Open("sqlite3", dbpath)
	return &SQLLiteIndex{rawDB: rawDB}, err
}

type SQLLiteIndex struct {
	rawDB *sql.DB
}

func (idx *SQLLiteIndex) runStatement(sql string) (sql.Result, error) {
	statement, err := idx.rawDB.Prepare(sql)
	if err != nil {
		return nil, err
	}
	result, err := statement.Exec()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (idx *SQLLiteIndex) Init() error {
	_, err := idx.runStatement(
		"CREATE TABLE IF NOT EXISTS archives (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"source TEXT, " +
			"created INTEGER, " +
			"seq INTEGER, " +
			"path TEXT, " +
			"size INTEGER, " +
			"UNIQUE(path)" +
			")")
	if err != nil {
		return err
	}
	log.Debug().Msg("archive index initialised")
	return nil
}

func (idx *SQLLiteIndex) Add(record archive.Record) error {
	_, err := idx.rawDB.Exec("INSERT OR REPLACE INTO archives (source, created, seq, path, size) VALUES(?, ?, ?, ?, ?)",
		record.SourceName, record.CreatedAt.Unix(), record.Seq, record.Path, record.SizeBytes)
	return err
}

func (idx *SQLLiteIndex) Remove(path string) error {
	_, err := idx.rawDB.Exec("DELETE FROM archives WHERE path=?", path)
	return err
}

func (idx *SQLLiteIndex) BySource(sourceName string) ([]archive.Record, error) {
	rows, err := idx.rawDB.Query("SELECT source, created, seq, path, size FROM archives WHERE source=? ORDER BY created DESC, path ASC", sourceName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]archive.Record, 0)
	for rows.Next() {
		var record archive.Record
		var created int64
		if err := rows.Scan(&record.SourceName, &created, &record.Seq, &record.Path, &record.SizeBytes); err != nil {
			return nil, err
		}
		record.CreatedAt = time.Unix(created, 0).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}

// Rebuild replaces the cache contents with a fresh directory listing.
func (idx *SQLLiteIndex) Rebuild(records []archive.Record) error {
	tx, err := idx.rawDB.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM archives"); err != nil {
		tx.Rollback()
		return err
	}
	for _, record := range records {
		_, err := tx.Exec("INSERT INTO archives (source, created, seq, path, size) VALUES(?, ?, ?, ?, ?)",
			record.SourceName, record.CreatedAt.Unix(), record.Seq, record.Path, record.SizeBytes)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (idx *SQLLiteIndex) Close() error {
	return idx.rawDB.Close()
}
