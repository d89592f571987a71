package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests,
// so we walk up until we find it. The current directory is returned when no root is found (eg. deployed binaries).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// Round2 rounds `f` to 2 decimal places, half away from zero.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// Percentage returns scored/total*100 rounded to 2 decimal places.
// A zero total yields 0.
func Percentage(scored, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(RawPercentage(scored, total))
}

// RawPercentage returns scored/total*100 without rounding; a zero total yields 0.
func RawPercentage(scored, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(scored) / float64(total) * 100
}

// MeanPercentage averages per-attempt percentages (not pooled scored/total) and rounds the result.
func MeanPercentage(percentages []float64) float64 {
	if len(percentages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range percentages {
		sum += p
	}
	return Round2(sum / float64(len(percentages)))
}
