package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// publicationHour is the local hour assigned to every scheduled post.
const publicationHour = 14

// maxFallbackItems caps topic extraction when the plan has no usable dates.
const maxFallbackItems = 5

// maxTitleLen bounds extracted titles, in runes.
const maxTitleLen = 100

// ScheduleItem is one publication extracted from generated plan text.
type ScheduleItem struct {
	Date  time.Time
	Title string
}

var (
	// "25.11 - Тема", "25/11/2026 – Тема"
	numericDateRe = regexp.MustCompile(`(\d{1,2}[./]\d{1,2}(?:[./]\d{4})?)\s*[-–—]\s*(.+)`)
	// "25 ноября - Тема"
	namedDateRe = regexp.MustCompile(`(\d{1,2})\s+(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)\s*[-–—]\s*(.+)`)

	listMarkerRe = regexp.MustCompile(`^[\d.\-*•\s]+`)
)

var monthsByName = map[string]time.Month{
	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

// topicKeywords mark lines that look like publication topics when the plan
// carries no parseable dates.
var topicKeywords = []string{"пост", "статья", "новост", "истор", "совет", "событ"}

// fallbackTopics are used when nothing could be extracted at all.
var fallbackTopics = []string{
	"Обновление о деятельности фонда",
	"История успеха",
	"Полезные советы",
	"Анонс мероприятия",
}

// ParseSchedule extracts the publication schedule from generated plan text.
// Lines shaped "date - topic" become dated items; dates in the past are
// dropped. When no future dated line exists, topic-looking lines are
// scheduled daily starting from the next publication slot, and when even
// those are missing a generic schedule is produced. The result is never
// empty and is ordered by date.
func ParseSchedule(text string, now time.Time) []ScheduleItem {
	var items []ScheduleItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		date, title, ok := parseDatedLine(line, now)
		if !ok {
			continue
		}
		if !date.After(now) {
			continue
		}
		items = append(items, ScheduleItem{Date: date, Title: truncateTitle(title)})
	}

	if len(items) == 0 {
		items = fallbackSchedule(text, now)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items
}

func parseDatedLine(line string, now time.Time) (time.Time, string, bool) {
	if m := numericDateRe.FindStringSubmatch(line); m != nil {
		date, ok := parseNumericDate(m[1], now)
		if !ok {
			return time.Time{}, "", false
		}
		return date, strings.TrimSpace(m[2]), true
	}
	if m := namedDateRe.FindStringSubmatch(line); m != nil {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, "", false
		}
		month := monthsByName[strings.ToLower(m[2])]
		date, ok := buildDate(day, month, now.Year(), now.Location())
		if !ok {
			return time.Time{}, "", false
		}
		return date, strings.TrimSpace(m[3]), true
	}
	return time.Time{}, "", false
}

func parseNumericDate(s string, now time.Time) (time.Time, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '/' })
	if len(parts) < 2 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	year := now.Year()
	if len(parts) == 3 {
		year, err = strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false
		}
	}
	return buildDateChecked(day, time.Month(month), year, now.Location())
}

func buildDate(day int, month time.Month, year int, loc *time.Location) (time.Time, bool) {
	return buildDateChecked(day, month, year, loc)
}

// buildDateChecked rejects impossible dates like 31.02 that time.Date would
// silently normalize into the next month.
func buildDateChecked(day int, month time.Month, year int, loc *time.Location) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, publicationHour, 0, 0, 0, loc)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// fallbackSchedule extracts topic-looking lines and spreads them daily
// starting from the next free publication slot.
func fallbackSchedule(text string, now time.Time) []ScheduleItem {
	var topics []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		matched := false
		for _, kw := range topicKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		topic := strings.TrimSpace(listMarkerRe.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(topic) <= 10 {
			continue
		}
		topics = append(topics, truncateTitle(topic))
		if len(topics) == maxFallbackItems {
			break
		}
	}
	if len(topics) == 0 {
		topics = fallbackTopics
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), publicationHour, 0, 0, 0, now.Location())
	if !start.After(now) {
		start = start.AddDate(0, 0, 1)
	}

	items := make([]ScheduleItem, 0, len(topics))
	for i, topic := range topics {
		items = append(items, ScheduleItem{Date: start.AddDate(0, 0, i), Title: topic})
	}
	return items
}

func truncateTitle(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxTitleLen])
}
