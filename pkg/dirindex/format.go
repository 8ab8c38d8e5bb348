// Package dirindex renders a static index.html listing the entries of a
// directory.
package dirindex

import (
	"fmt"
	"time"
)

var sizeUnits = []struct {
	name string
	size int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// FormatSize renders a byte count with binary units: "0 B", "456 B",
// "1.5 KB", "100 MB".
func FormatSize(n int64) string {
	if n == 0 {
		return "0 B"
	}
	for _, u := range sizeUnits {
		if n < u.size {
			continue
		}
		if u.name == "B" {
			return fmt.Sprintf("%d B", n)
		}
		v := float64(n) / float64(u.size)
		if v >= 100 {
			return fmt.Sprintf("%d %s", int64(v), u.name)
		}
		return fmt.Sprintf("%.1f %s", v, u.name)
	}
	return fmt.Sprintf("%d B", n)
}

// FormatModTime renders t as "(YYYY-MM-DD HH:MM)" in local time.
func FormatModTime(t time.Time) string {
	if t.IsZero() {
		return "(-)"
	}
	return "(" + t.Local().Format("2006-01-02 15:04") + ")"
}
