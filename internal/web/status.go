package web

import (
	"sync/atomic"
	"time"

	"gnsslog/internal/task"
)

type Status struct {
	startUnixNano int64
	lastTaskNano  int64
	listen        atomic.Value // string
	lastTaskID    atomic.Value // string
	pool          *task.Pool
}

func NewStatus(pool *task.Pool) *Status {
	s := &Status{pool: pool}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.listen.Store("")
	s.lastTaskID.Store("")
	return s
}

func (s *Status) SetListen(addr string) {
	if addr != "" {
		s.listen.Store(addr)
	}
}

// MarkTask records the most recently completed parse task.
func (s *Status) MarkTask(nowUTC time.Time, id string) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastTaskNano, nowUTC.UnixNano())
	s.lastTaskID.Store(id)
}

type StatusSnapshot struct {
	Service     string     `json:"service"`
	NowUTC      string     `json:"now_utc"`
	UptimeSec   int64      `json:"uptime_sec"`
	Listen      string     `json:"listen,omitempty"`
	Tasks       task.Stats `json:"tasks"`
	LastTaskID  string     `json:"last_task_id,omitempty"`
	LastTaskUTC string     `json:"last_task_utc,omitempty"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	snap := StatusSnapshot{
		Service:    "gnsslog",
		NowUTC:     nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:  int64(nowUTC.Sub(start).Seconds()),
		Listen:     s.listen.Load().(string),
		LastTaskID: s.lastTaskID.Load().(string),
	}
	if s.pool != nil {
		snap.Tasks = s.pool.Stats()
	}
	if last := atomic.LoadInt64(&s.lastTaskNano); last != 0 {
		snap.LastTaskUTC = time.Unix(0, last).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
