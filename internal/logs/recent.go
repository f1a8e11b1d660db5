package logs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileName is the log file written under paths.log_dir.
const FileName = "sitephoto.log"

// Options filters the lines Recent returns. Empty filters match every line.
type Options struct {
	Limit  int
	RunID  string
	Folder string
	Level  string
}

func (o Options) match(line string) bool {
	if o.RunID != "" && !strings.Contains(line, o.RunID) {
		return false
	}
	if o.Folder != "" && !strings.Contains(line, o.Folder) {
		return false
	}
	if o.Level != "" && !strings.Contains(strings.ToUpper(line), strings.ToUpper(o.Level)) {
		return false
	}
	return true
}

// Recent returns the last opts.Limit lines of path that pass the filters, in
// file order. A missing file yields no lines.
func Recent(path string, opts Options) ([]string, error) {
	if opts.Limit <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ring := make([]string, opts.Limit)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !opts.match(line) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % opts.Limit
		if count < opts.Limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count == opts.Limit {
		for i := range count {
			lines[i] = ring[(idx+i)%opts.Limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
