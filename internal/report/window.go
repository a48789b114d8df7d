package report

import "time"

// WindowOptions 是时间窗口的入参。DaysToCapture 优先级最高，其次
// HoursToCapture、MinutesToCapture，最后才使用 FromDate/ToDate。
type WindowOptions struct {
	DaysToCapture    int
	HoursToCapture   int
	MinutesToCapture int
	FromDate         time.Time
	ToDate           time.Time
}

// Window 是解析后的左闭右闭时间窗口，统一为 UTC。
type Window struct {
	From time.Time
	To   time.Time
}

// ResolveWindow 按优先级解析时间窗口。全部缺省时取最近 24 小时。
func ResolveWindow(opts WindowOptions, now time.Time) Window {
	now = now.UTC()
	switch {
	case opts.DaysToCapture > 0:
		return Window{From: now.AddDate(0, 0, -opts.DaysToCapture), To: now}
	case opts.HoursToCapture > 0:
		return Window{From: now.Add(-time.Duration(opts.HoursToCapture) * time.Hour), To: now}
	case opts.MinutesToCapture > 0:
		return Window{From: now.Add(-time.Duration(opts.MinutesToCapture) * time.Minute), To: now}
	case !opts.FromDate.IsZero():
		to := opts.ToDate
		if to.IsZero() {
			to = now
		}
		return Window{From: opts.FromDate.UTC(), To: to.UTC()}
	default:
		return Window{From: now.Add(-24 * time.Hour), To: now}
	}
}
