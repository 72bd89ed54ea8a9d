package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"chorus/internal/logging"
)

const pollInterval = 250 * time.Millisecond

// Filter selects records by their structured fields. Empty fields match everything.
type Filter struct {
	Identifier    string
	CorrelationID string
}

func (f Filter) empty() bool {
	return f.Identifier == "" && f.CorrelationID == ""
}

func (f Filter) match(line string) bool {
	if f.empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if f.Identifier != "" && record[logging.FieldIdentifier] != f.Identifier {
		return false
	}
	if f.CorrelationID != "" && record[logging.FieldCorrelationID] != f.CorrelationID {
		return false
	}
	return true
}

// Options controls a Tail call.
type Options struct {
	// Offset is the byte position to resume from. A negative offset reads the
	// last Limit matching lines of the whole file.
	Offset int64
	Limit  int
	Filter Filter
	// Wait, when positive, blocks until new matching lines arrive or the wait elapses.
	Wait time.Duration
}

// Result carries the lines read and the offset to resume from.
type Result struct {
	Lines  []string
	Offset int64
}

// Tail reads matching lines from path. A missing file yields no lines.
func Tail(ctx context.Context, path string, opts Options) (Result, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("log path %q is a directory", path)
	}

	offset := opts.Offset
	limit := opts.Limit
	if offset < 0 {
		offset = 0
	} else {
		if offset > info.Size() {
			// Truncated or rotated underneath us.
			offset = 0
		}
		limit = 0
	}

	deadline := time.Now().Add(max(opts.Wait, 0))
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		lines, next, err := scan(path, offset, limit, opts.Filter)
		if err != nil {
			return Result{Offset: offset}, err
		}
		if len(lines) > 0 || opts.Wait <= 0 || time.Now().After(deadline) {
			return Result{Lines: lines, Offset: next}, nil
		}
		offset = next
		select {
		case <-ctx.Done():
			return Result{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// scan reads complete lines from offset to EOF, keeping the last limit
// matches when limit is positive. A trailing partial line is left for the
// next call.
func scan(path string, offset int64, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var (
		lines []string
		ring  = newRing(limit)
		pos   = offset
	)
	for {
		raw, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// Oversized record: skip it whole, or retry next call if it is still being written.
			n, skipErr := skipLine(reader)
			if skipErr != nil {
				break
			}
			pos += int64(len(raw)) + n
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, offset, fmt.Errorf("read log file: %w", err)
		}
		pos += int64(len(raw))
		line := string(raw[:len(raw)-1])
		if !filter.match(line) {
			continue
		}
		if ring != nil {
			ring.push(line)
		} else {
			lines = append(lines, line)
		}
	}
	if ring != nil {
		lines = ring.items()
	}
	return lines, pos, nil
}

func skipLine(r *bufio.Reader) (int64, error) {
	var n int64
	for {
		chunk, err := r.ReadSlice('\n')
		n += int64(len(chunk))
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return n, err
		}
	}
}

type ring struct {
	buf   []string
	next  int
	count int
}

func newRing(size int) *ring {
	if size <= 0 {
		return nil
	}
	return &ring{buf: make([]string, size)}
}

func (r *ring) push(s string) {
	r.buf[r.next] = s
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring) items() []string {
	out := make([]string, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}
