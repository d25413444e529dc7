// Package extract finds Asana task references in free-form pull request text.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
)

const taskURLPattern = `\s*https://app\.asana\.com/(\d+)/(?P<project>\d+)/(?P<task>\d+)`

// Extractor scans text for task URLs that follow a trigger phrase.
type Extractor struct {
	re      *regexp.Regexp
	trigger string
	log     *slog.Logger
}

// New compiles the task URL pattern for the given trigger phrase. The phrase
// is matched literally and may be empty.
func New(trigger string, logger *slog.Logger) (*Extractor, error) {
	re, err := regexp.Compile(regexp.QuoteMeta(trigger) + taskURLPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile task pattern for trigger %q: %w", trigger, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{re: re, trigger: trigger, log: logger}, nil
}

// TaskIDs returns the task ids in order of appearance. Duplicates are kept.
func (e *Extractor) TaskIDs(text string) []string {
	taskIdx := e.re.SubexpIndex("task")
	var ids []string
	for _, m := range e.re.FindAllStringSubmatch(text, -1) {
		if taskIdx < 0 || taskIdx >= len(m) || m[taskIdx] == "" {
			e.log.Error(fmt.Sprintf("Invalid Asana task URL after the trigger phrase %s", e.trigger))
			continue
		}
		ids = append(ids, m[taskIdx])
	}
	return ids
}
