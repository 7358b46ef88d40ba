package media

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const TrimZero = "00:00:00"

var (
	ErrInvalidTrimTime = errors.New("please use HH:MM:SS format for trim times (e.g., 00:01:30)")
	ErrTrimOrder       = errors.New("trim end must be after trim start")
)

var trimPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)

func ValidateTrimTime(value string) error {
	if !trimPattern.MatchString(value) {
		return fmt.Errorf("%w: got %q", ErrInvalidTrimTime, value)
	}
	return nil
}

func trimSeconds(value string) int {
	m := trimPattern.FindStringSubmatch(value)
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return h*3600 + mins*60 + s
}

// Trim is a validated clip range. Empty fields mean open-ended.
type Trim struct {
	Start string
	End   string
}

// ParseTrim validates user input. A nil Trim means the full media.
func ParseTrim(start, end string) (*Trim, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == TrimZero {
		start = ""
	}
	if start == "" && end == "" {
		return nil, nil
	}
	if start != "" {
		if err := ValidateTrimTime(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if err := ValidateTrimTime(end); err != nil {
			return nil, err
		}
	}
	startAt := 0
	if start != "" {
		startAt = trimSeconds(start)
	}
	if end != "" && trimSeconds(end) <= startAt {
		return nil, fmt.Errorf("%w: %s is not after %s", ErrTrimOrder, end, orZero(start))
	}
	return &Trim{Start: start, End: end}, nil
}

func orZero(s string) string {
	if s == "" {
		return TrimZero
	}
	return s
}

// Section renders the range for the extractor's download-sections option.
func (t Trim) Section() string {
	end := t.End
	if end == "" {
		end = "inf"
	}
	return "*" + orZero(t.Start) + "-" + end
}

func (t Trim) String() string {
	end := t.End
	if end == "" {
		end = "end"
	}
	return orZero(t.Start) + " to " + end
}
