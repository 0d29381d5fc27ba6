package daykey

import (
	"fmt"
	"strings"
	"time"
)

// ResetHourUTC is the hour at which a new learning day starts. Any time
// before 02:00 UTC still belongs to the previous calendar day, keeping
// late-night sessions on the day the user started them.
const ResetHourUTC = 2

// Layout is the wire format of a date key
const Layout = "2006-01-02"

// Current returns the date key for the current learning day
func Current() string {
	return At(time.Now())
}

// At returns the date key for the learning day containing t
func At(t time.Time) string {
	t = t.UTC()
	if t.Hour() < ResetHourUTC {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(Layout)
}

// WeekOf returns the date key of the Monday of the learning week containing t.
// Used to scope leaderboard entries.
func WeekOf(t time.Time) string {
	t = t.UTC()
	if t.Hour() < ResetHourUTC {
		t = t.AddDate(0, 0, -1)
	}
	// time.Weekday is Sunday-based
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(Layout)
}

// Parse validates a date key and returns its day
func Parse(key string) (time.Time, error) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// BuildKey namespaces a persistence key by concern, user and learning day so
// state bundles never collide across users or days. The caller must guard
// against an empty userID; the builder does not validate.
func BuildKey(concern, userID, dateKey string) string {
	return concern + "_" + userID + "_" + dateKey
}

// SplitKey is the inverse of BuildKey. Concerns never contain underscores and
// the date key is always the trailing segment, so a userID containing
// underscores still round-trips.
func SplitKey(key string) (concern, userID, dateKey string, ok bool) {
	first := strings.Index(key, "_")
	last := strings.LastIndex(key, "_")
	if first < 0 || last <= first {
		return "", "", "", false
	}
	concern = key[:first]
	userID = key[first+1 : last]
	dateKey = key[last+1:]
	if concern == "" || userID == "" {
		return "", "", "", false
	}
	if _, err := Parse(dateKey); err != nil {
		return "", "", "", false
	}
	return concern, userID, dateKey, true
}

// OlderThan reports whether the date key embedded in a scoped key is strictly
// before cutoff. Keys that do not embed a valid date key are never considered
// stale. Date keys compare correctly as plain strings.
func OlderThan(key, cutoff string) bool {
	_, _, dateKey, ok := SplitKey(key)
	if !ok {
		return false
	}
	return dateKey < cutoff
}

// punctuation stripped by CleanWord, including the Lithuanian quote forms
const punctuation = ".,!?;:\"'()[]„“”‚‘’…–—"

// CleanWord normalizes a word for membership tests: lowercase with the fixed
// punctuation set removed. Idempotent.
func CleanWord(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, word)
}

// Words splits sentence text into normalized words, dropping anything that
// normalizes to the empty string.
func Words(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		if w := CleanWord(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}
