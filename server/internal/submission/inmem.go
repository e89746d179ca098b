package submission

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// InMemoryStore 是一个基于内存的提交记录存储。
// 超过 capacity 时丢弃最旧的记录；重启即丢数据。
type InMemoryStore struct {
	mu       sync.RWMutex
	records  []Record
	seq      int64
	byID     map[string]int64
	capacity int
}

// DefaultCapacity 默认保留的记录条数。
const DefaultCapacity = 1000

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryStore{
		byID:     make(map[string]int64),
		capacity: capacity,
	}
}

func (s *InMemoryStore) Append(_ context.Context, rec *Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID != "" {
		if seq, ok := s.byID[rec.ID]; ok {
			return seq, nil
		}
	}

	s.seq++
	stored := cloneRecord(*rec)
	stored.Seq = s.seq
	s.records = append(s.records, stored)
	if rec.ID != "" {
		s.byID[rec.ID] = s.seq
	}

	if over := len(s.records) - s.capacity; over > 0 {
		for _, old := range s.records[:over] {
			delete(s.byID, old.ID)
		}
		s.records = slices.Clone(s.records[over:])
	}
	return s.seq, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// records 按 seq 升序且连续
	idx := int(seq - s.records[0].Seq)
	out := cloneRecord(s.records[idx])
	return &out, nil
}

func (s *InMemoryStore) List(_ context.Context, opts ListOptions) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if opts.InvalidOnly && rec.Report.IsValid {
			continue
		}
		if opts.DocumentID != "" && rec.DocumentID != opts.DocumentID {
			continue
		}
		out = append(out, cloneRecord(rec))
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	slices.Reverse(out)
	return out, nil
}

// Len 返回当前保留的记录数。
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecord(r Record) Record {
	r.Report.Errors = slices.Clone(r.Report.Errors)
	r.Report.Warnings = slices.Clone(r.Report.Warnings)
	r.SceneCounts = maps.Clone(r.SceneCounts)
	return r
}
