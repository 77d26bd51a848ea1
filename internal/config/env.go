package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
		return dur
	}
	return d
}

// required collects missing variables instead of exiting, so Load can
// report all of them at once.
type required struct {
	missing []string
	invalid []string
}

func (r *required) str(k string) string {
	v, ok := os.LookupEnv(k)
	if !ok || strings.TrimSpace(v) == "" {
		r.missing = append(r.missing, k)
		return ""
	}
	return v
}

func (r *required) intOr(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.invalid = append(r.invalid, fmt.Sprintf("%s=%q", k, v))
		return d
	}
	return n
}

func (r *required) err() error {
	var parts []string
	if len(r.missing) > 0 {
		parts = append(parts, "missing required env vars: "+strings.Join(r.missing, ", "))
	}
	if len(r.invalid) > 0 {
		parts = append(parts, "invalid int values: "+strings.Join(r.invalid, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}
