// Package trace replays branch traces through a direction predictor the way
// an in-order fetch unit with a bounded speculation window would.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/gselect/timing/bpred"
)

// Record is one dynamic branch on the correct path.
type Record struct {
	TID         bpred.ThreadID
	PC          bpred.Addr
	Conditional bool
	Taken       bool
	// BTBHit marks a branch whose target the BTB supplied.
	BTBHit bool
}

// String formats the record in trace file syntax.
func (r Record) String() string {
	kind := "U"
	if r.Conditional {
		kind = "C"
	}

	dir := "N"
	if r.Taken {
		dir = "T"
	}

	s := fmt.Sprintf("%d %#x %s %s", r.TID, uint64(r.PC), kind, dir)
	if r.BTBHit {
		s += " B"
	}

	return s
}

// ReadFile parses a trace file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads records of the form
//
//	<tid> <pc> <C|U> <T|N> [B]
//
// one per line. The pc is hexadecimal with or without a 0x prefix. Blank
// lines and lines starting with # are skipped.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return records, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 || len(fields) > 5 {
		return Record{}, fmt.Errorf("expected 4 or 5 fields, got %d", len(fields))
	}

	tid, err := strconv.Atoi(fields[0])
	if err != nil || tid < 0 {
		return Record{}, fmt.Errorf("invalid thread id %q", fields[0])
	}

	pcText := strings.TrimPrefix(strings.ToLower(fields[1]), "0x")
	pc, err := strconv.ParseUint(pcText, 16, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid pc %q", fields[1])
	}

	rec := Record{TID: bpred.ThreadID(tid), PC: bpred.Addr(pc)}

	switch fields[2] {
	case "C":
		rec.Conditional = true
	case "U":
	default:
		return Record{}, fmt.Errorf("invalid branch kind %q", fields[2])
	}

	switch fields[3] {
	case "T":
		rec.Taken = true
	case "N":
		if !rec.Conditional {
			return Record{}, fmt.Errorf("unconditional branch cannot be not taken")
		}
	default:
		return Record{}, fmt.Errorf("invalid direction %q", fields[3])
	}

	if len(fields) == 5 {
		if fields[4] != "B" {
			return Record{}, fmt.Errorf("invalid flag %q", fields[4])
		}
		rec.BTBHit = true
	}

	return rec, nil
}

// CheckThreads returns an error if any record belongs to a thread outside
// [0, numThreads).
func CheckThreads(records []Record, numThreads int) error {
	for i, rec := range records {
		if int(rec.TID) >= numThreads {
			return fmt.Errorf(
				"record %d (%s) uses thread %d, predictor has %d thread(s)",
				i+1, rec, rec.TID, numThreads)
		}
	}

	return nil
}
