package pin

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists pinned sets per score hash so pins survive restarts
// of the same score.
type Store struct {
	db *sql.DB
}

func (s *Store) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	initStatement := `
	create table if not exists pins
	  (
		  id integer not null primary key,
		  sum text not null,
		  note_id text not null
	  );
	`
	if _, err = db.Exec(initStatement); nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *Store) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

func (s *Store) Save(sum string, set *Set) error {
	tx, err := s.db.Begin()
	if nil != err {
		return err
	}
	if _, err = tx.Exec("delete from pins where sum = ?", sum); nil != err {
		tx.Rollback()
		return err
	}
	for _, id := range set.IDs() {
		if _, err = tx.Exec("insert into pins(sum, note_id) values(?, ?)", sum, id); nil != err {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Load(sum string) (*Set, error) {
	rows, err := s.db.Query("select note_id from pins where sum = ? order by id", sum)
	if nil != err {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); nil != err {
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); nil != err {
		return nil, err
	}
	return New(ids...), nil
}
