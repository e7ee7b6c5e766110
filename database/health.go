package database

import (
	"context"
	"fmt"
	"time"
)

// PoolStats is a connection pool snapshot taken right after a ping.
type PoolStats struct {
	Latency time.Duration
	Open    int
	InUse   int
	Idle    int
	// Waited counts connections callers had to wait for since open.
	Waited int64
}

func (p PoolStats) String() string {
	return fmt.Sprintf("open=%d in_use=%d idle=%d waited=%d", p.Open, p.InUse, p.Idle, p.Waited)
}

// Check pings the database and snapshots the pool.
func (d *DB) Check(ctx context.Context) (PoolStats, error) {
	start := time.Now()
	if err := d.sql.PingContext(ctx); err != nil {
		return PoolStats{}, err
	}
	s := d.sql.Stats()
	return PoolStats{
		Latency: time.Since(start),
		Open:    s.OpenConnections,
		InUse:   s.InUse,
		Idle:    s.Idle,
		Waited:  s.WaitCount,
	}, nil
}
