package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringSlice stores a []string as a comma separated column.
// No element may include a comma.
type StringSlice []string

func (StringSlice) GormDataType() string {
	return "text"
}

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	for _, v := range s {
		if strings.Contains(v, ",") {
			return "", fmt.Errorf("unsafe string, %s", v)
		}
	}

	return strings.Join(s, ","), nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan StringSlice, %v", value)
		}

		str = string(b)
	}

	if str == "" {
		*s = []string{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}

// ParseStringSlice splits comma separated user input, trimming blanks and
// dropping duplicates
func ParseStringSlice(raw string) StringSlice {
	out := StringSlice{}
	seen := make(map[string]bool)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[strings.ToLower(part)] {
			continue
		}

		seen[strings.ToLower(part)] = true
		out = append(out, part)
	}

	return out
}
