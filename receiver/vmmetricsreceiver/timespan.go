// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package vmmetricsreceiver // import "github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timespanLayout = "2006-01-02T15:04:05Z"

// scheduleStep returns the minutes between two runs of schedule, read from
// the minute field: "*" is every minute, "*/N" every N minutes and a fixed
// minute once an hour.
func scheduleStep(schedule string) (int, error) {
	fields := strings.Fields(schedule)
	if len(fields) != 6 {
		return 0, fmt.Errorf("schedule %q must have 6 fields", schedule)
	}
	minute := fields[1]
	switch {
	case minute == "*":
		return 1, nil
	case strings.HasPrefix(minute, "*/"):
		n, err := strconv.Atoi(strings.TrimPrefix(minute, "*/"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("schedule %q has an invalid minute step", schedule)
		}
		return n, nil
	}
	if _, err := strconv.Atoi(minute); err != nil {
		return 0, fmt.Errorf("schedule %q has an unsupported minute field", schedule)
	}
	return 60, nil
}

// Timespan returns "begin/end" for a collection run at now. end is now
// minus rewindMin minutes and begin precedes end by the schedule step.
func Timespan(now time.Time, schedule string, rewindMin int) (string, error) {
	step, err := scheduleStep(schedule)
	if err != nil {
		return "", err
	}
	end := now.UTC().Add(-time.Duration(rewindMin) * time.Minute)
	begin := end.Add(-time.Duration(step) * time.Minute)
	return begin.Format(timespanLayout) + "/" + end.Format(timespanLayout), nil
}
