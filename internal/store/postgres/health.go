package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// Pinger is a bare database/sql connection used only for liveness
// checks, kept separate from gorm's pooled connection so a health
// probe never contends with request-serving queries. Registers the
// lib/pq driver directly rather than going through gorm's own
// postgres driver, the same ambient stack split the teacher's go.mod
// names but never exercises.
type Pinger struct {
	db *sql.DB
}

func NewPinger(databaseURL string) (*Pinger, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	return &Pinger{db: db}, nil
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
