package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"truck-dispatch-agent/internal/domain"

	"github.com/klauspost/compress/zstd"
)

// One journal line per processed turn.
type TurnRecord struct {
	Turn                  int           `json:"turn"`
	NewRequests           int           `json:"new_requests"`
	OpportunisticAssigned int           `json:"opportunistic_assigned"`
	ScheduledAssigned     int           `json:"scheduled_assigned"`
	Pickups               int           `json:"pickups"`
	Dropoffs              int           `json:"dropoffs"`
	RecoveriesSucceeded   int           `json:"recoveries_succeeded"`
	RecoveriesFailed      int           `json:"recoveries_failed"`
	OracleAttempts        int           `json:"oracle_attempts"`
	PoolSize              int           `json:"pool_size"`
	PoolActive            int           `json:"pool_active"`
	DurationMicros        int64         `json:"duration_us"`
	Events                []EventRecord `json:"events,omitempty"`
}

type EventRecord struct {
	Truck    int    `json:"truck"`
	Package  int    `json:"package"`
	Kind     string `json:"kind"`
	Attempts int    `json:"attempts,omitempty"`
}

func recordFromSummary(s domain.TurnSummary) TurnRecord {
	rec := TurnRecord{
		Turn:                  s.Turn,
		NewRequests:           s.NewRequests,
		OpportunisticAssigned: s.OpportunisticAssigned,
		ScheduledAssigned:     s.ScheduledAssigned,
		Pickups:               s.Pickups,
		Dropoffs:              s.Dropoffs,
		RecoveriesSucceeded:   s.RecoveriesSucceeded,
		RecoveriesFailed:      s.RecoveriesFailed,
		OracleAttempts:        s.OracleAttempts,
		PoolSize:              s.PoolSize,
		PoolActive:            s.PoolActive,
		DurationMicros:        s.Duration.Microseconds(),
	}
	for _, e := range s.Events {
		rec.Events = append(rec.Events, EventRecord{
			Truck:    e.TruckID,
			Package:  int(e.PackageID),
			Kind:     string(e.Kind),
			Attempts: e.Attempts,
		})
	}
	return rec
}

// DeliveryEvents converts the record's events back to domain form.
func (r TurnRecord) DeliveryEvents() []domain.DeliveryEvent {
	out := make([]domain.DeliveryEvent, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, domain.DeliveryEvent{
			Turn:      r.Turn,
			TruckID:   e.Truck,
			PackageID: domain.PackageID(e.Package),
			Kind:      domain.EventKind(e.Kind),
			Attempts:  e.Attempts,
		})
	}
	return out
}

// Journal writes turn records as zstd-compressed JSON lines, one file per hour.
type Journal struct {
	baseDir string
	prefix  string
	Now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func New(baseDir, prefix string) *Journal {
	return &Journal{baseDir: baseDir, prefix: prefix, Now: time.Now}
}

// ObserveTurn appends the summary to the current hour's file.
func (j *Journal) ObserveTurn(ctx context.Context, summary domain.TurnSummary) error {
	return j.Write(recordFromSummary(summary))
}

func (j *Journal) Write(rec TurnRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	hour := j.Now().UTC().Format("2006-01-02-15")
	if hour != j.curHour {
		if err := j.rotateLocked(hour); err != nil {
			return fmt.Errorf("journal: rotate: %w", err)
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("journal: encode turn %d: %w", rec.Turn, err)
	}
	if _, err := j.w.Write(b); err != nil {
		return fmt.Errorf("journal: write turn %d: %w", rec.Turn, err)
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("journal: write turn %d: %w", rec.Turn, err)
	}
	return j.w.Flush()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

// Path returns the file the given hour's records go to.
func (j *Journal) Path(t time.Time) string {
	return j.pathForHour(t.UTC().Format("2006-01-02-15"))
}

func (j *Journal) rotateLocked(hour string) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	path := j.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	j.f = f
	j.enc = enc
	j.w = bufio.NewWriterSize(enc, 64*1024)
	j.curHour = hour
	return nil
}

func (j *Journal) closeLocked() error {
	var errs []error
	if j.w != nil {
		errs = append(errs, j.w.Flush())
	}
	if j.enc != nil {
		errs = append(errs, j.enc.Close())
		j.enc = nil
	}
	if j.f != nil {
		errs = append(errs, j.f.Close())
		j.f = nil
	}
	j.w = nil
	j.curHour = ""
	return errors.Join(errs...)
}

func (j *Journal) pathForHour(hour string) string {
	return filepath.Join(j.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, hour))
}

// ReadFile decodes every record of one journal file.
func ReadFile(path string) ([]TurnRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}
	defer dec.Close()

	var out []TurnRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var rec TurnRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("read journal %s: line %d: %w", path, len(out)+1, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}
	return out, nil
}
