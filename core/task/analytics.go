package task

import "time"

type (
	DayBucket struct {
		Day   time.Time     `json:"day"`
		Total time.Duration `json:"total"`
	}

	WeekBucket struct {
		WeekStart time.Time     `json:"week_start"`
		Label     string        `json:"label"`
		Total     time.Duration `json:"total"`
	}

	MonthBucket struct {
		Month time.Time     `json:"month"`
		Label string        `json:"label"`
		Total time.Duration `json:"total"`
	}

	GoalProgress struct {
		Total      time.Duration `json:"total"`      // uncapped, for display text
		Percentage float64       `json:"percentage"` // 0..100, clamped for progress bars
	}
)

// WeekStart returns the Monday 00:00 UTC of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	wd := int(d.Weekday())
	if wd == 0 { // Sunday
		wd = 7
	}
	return d.AddDate(0, 0, 1-wd)
}

// BucketByDay reports a zero-filled, chronological total per calendar day in
// [from, to] inclusive. Durations are attributed to the owning task's Date,
// not to the log's own day. Open logs are measured up to `now`.
func BucketByDay(tasks []StudyTask, from, to, now time.Time) []DayBucket {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}

	totals := make(map[time.Time]time.Duration)
	for _, t := range tasks {
		day := t.Day()
		if day.Before(from) || day.After(to) {
			continue
		}
		totals[day] += TotalDuration(t, now)
	}

	days := int(to.Sub(from).Hours()/24) + 1
	buckets := make([]DayBucket, 0, days)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		buckets = append(buckets, DayBucket{Day: day, Total: totals[day]})
	}
	return buckets
}

// BucketByWeek partitions [from, to] into Monday-anchored 7-day windows and
// sums the daily totals within each.
func BucketByWeek(tasks []StudyTask, from, to, now time.Time) []WeekBucket {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}

	days := BucketByDay(tasks, from, to, now)
	var buckets []WeekBucket
	for _, d := range days {
		start := WeekStart(d.Day)
		if n := len(buckets); n == 0 || !buckets[n-1].WeekStart.Equal(start) {
			buckets = append(buckets, WeekBucket{
				WeekStart: start,
				Label:     start.Format("Jan 02") + " - " + start.AddDate(0, 0, 6).Format("Jan 02"),
			})
		}
		buckets[len(buckets)-1].Total += d.Total
	}
	return buckets
}

// BucketByMonth sums daily totals per calendar month across [from, to].
func BucketByMonth(tasks []StudyTask, from, to, now time.Time) []MonthBucket {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}

	days := BucketByDay(tasks, from, to, now)
	var buckets []MonthBucket
	for _, d := range days {
		month := time.Date(d.Day.Year(), d.Day.Month(), 1, 0, 0, 0, 0, time.UTC)
		if n := len(buckets); n == 0 || !buckets[n-1].Month.Equal(month) {
			buckets = append(buckets, MonthBucket{Month: month, Label: month.Format("Jan 2006")})
		}
		buckets[len(buckets)-1].Total += d.Total
	}
	return buckets
}

// WeeklyGoalProgress restricts to tasks dated within the ISO week (Mon-Sun)
// containing `now` and measures the logged total against goalHours.
// Percentage is clamped to 100; Total is left uncapped.
func WeeklyGoalProgress(tasks []StudyTask, goalHours float64, now time.Time) GoalProgress {
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)

	var total time.Duration
	for _, t := range tasks {
		day := t.Day()
		if day.Before(start) || !day.Before(end) {
			continue
		}
		total += TotalDuration(t, now)
	}

	var pct float64
	if goalHours > 0 {
		pct = float64(total) / (goalHours * float64(time.Hour)) * 100
		if pct > 100 {
			pct = 100
		}
	}
	return GoalProgress{Total: total, Percentage: pct}
}
