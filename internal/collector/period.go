package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodStart resolves a lookback such as "1y", "6mo", "2wk", "30d" or "ytd" against now.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "ytd" {
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	}
	n, unit, err := splitPeriod(p)
	if err != nil {
		return time.Time{}, err
	}
	switch unit {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	case "y":
		return now.AddDate(-n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("unsupported period %q", period)
}

// PeriodTradingDays approximates how many daily bars a period covers.
func PeriodTradingDays(period string) (int, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "ytd" {
		return 252, nil
	}
	n, unit, err := splitPeriod(p)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "d":
		return n, nil
	case "wk":
		return 5 * n, nil
	case "mo":
		return 21 * n, nil
	case "y":
		return 252 * n, nil
	}
	return 0, fmt.Errorf("unsupported period %q", period)
}

func splitPeriod(p string) (int, string, error) {
	i := 0
	for i < len(p) && p[i] >= '0' && p[i] <= '9' {
		i++
	}
	if i == 0 || i == len(p) {
		return 0, "", fmt.Errorf("invalid period %q", p)
	}
	n, err := strconv.Atoi(p[:i])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("invalid period %q", p)
	}
	return n, p[i:], nil
}
