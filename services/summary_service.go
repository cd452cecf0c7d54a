package services

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/breadMSA/Calories/models"
)

// Achievement classifies one nutrient on one day against its target.
type Achievement string

const (
	AchievementMet    Achievement = "met"
	AchievementNotMet Achievement = "not_met"
	AchievementNoData Achievement = "no_data"
)

// Nutrient identifies one tracked nutrient and whether its target is an
// upper bound (sodium) rather than a goal to reach.
type Nutrient struct {
	Key      string `json:"key"`
	Unit     string `json:"unit"`
	Inverted bool   `json:"inverted"`
}

// Nutrients lists the tracked nutrients in display order.
var Nutrients = []Nutrient{
	{Key: "calories", Unit: "kcal"},
	{Key: "protein", Unit: "g"},
	{Key: "sodium", Unit: "mg", Inverted: true},
	{Key: "water", Unit: "ml"},
}

func nutrientValue(t models.TargetSet, key string) int {
	switch key {
	case "calories":
		return t.Calories
	case "protein":
		return t.Protein
	case "sodium":
		return t.Sodium
	case "water":
		return t.Water
	}
	return 0
}

// evaluateTarget classifies a single (current, target) pair. Days without
// any entry are NoData for every nutrient, even ones summing to zero.
// A non-positive target can never be met. Regular nutrients are met at 80%
// of target or more; an inverted nutrient is met by staying at or under
// 100% of its limit.
func evaluateTarget(current, target int, inverted, hasData bool) Achievement {
	if !hasData {
		return AchievementNoData
	}
	if target <= 0 {
		return AchievementNotMet
	}
	pct := float64(current) / float64(target) * 100
	if inverted {
		if pct <= 100 {
			return AchievementMet
		}
		return AchievementNotMet
	}
	if pct >= 80 {
		return AchievementMet
	}
	return AchievementNotMet
}

// dayScore counts met nutrients (0-4) for a day's totals.
func dayScore(totals models.TargetSet, targets models.TargetSet, hasData bool) int {
	score := 0
	for _, n := range Nutrients {
		a := evaluateTarget(nutrientValue(totals, n.Key), nutrientValue(targets, n.Key), n.Inverted, hasData)
		if a == AchievementMet {
			score++
		}
	}
	return score
}

// scoreTier maps a day's met count onto the calendar colour tiers.
func scoreTier(score int, hasData bool) string {
	switch {
	case !hasData:
		return ""
	case score >= 3:
		return "good"
	case score == 2:
		return "ok"
	default:
		return "bad"
	}
}

// ratioTier maps an achieved percentage onto the year-view colour tiers.
func ratioTier(percent float64) string {
	switch {
	case percent >= 70:
		return "good"
	case percent >= 40:
		return "ok"
	default:
		return "bad"
	}
}

const dateLayout = "2006-01-02"

// maxFetchConcurrency bounds the per-date fan-out of week/month/year
// aggregation so a rate-limited store is not flooded.
const maxFetchConcurrency = 8

// DayFetcher supplies one date's record; RecordService satisfies it.
type DayFetcher interface {
	FetchDay(ctx context.Context, date string) (models.DayRecord, error)
}

// dayData is the memoized per-date view the aggregation works from.
type dayData struct {
	Totals  models.TargetSet
	Entries []models.FoodEntry
	HasData bool
}

// SummarySession aggregates day records over one view: an anchor date, a
// granularity and a per-date cache living exactly as long as the session.
// A fetch failure degrades that date to "no data" instead of failing the
// whole view.
type SummarySession struct {
	fetcher DayFetcher
	targets models.TargetSet

	mu    sync.Mutex
	cache map[string]dayData
}

func NewSummarySession(fetcher DayFetcher, targets models.TargetSet) *SummarySession {
	return &SummarySession{
		fetcher: fetcher,
		targets: targets,
		cache:   make(map[string]dayData),
	}
}

// fetch returns the cached day, loading it at most once per session.
func (s *SummarySession) fetch(ctx context.Context, date string) dayData {
	s.mu.Lock()
	if d, ok := s.cache[date]; ok {
		s.mu.Unlock()
		return d
	}
	s.mu.Unlock()

	d := dayData{Entries: []models.FoodEntry{}}
	rec, err := s.fetcher.FetchDay(ctx, date)
	if err == nil {
		d = dayData{Totals: rec.Totals, Entries: rec.Entries, HasData: rec.HasData()}
	}

	s.mu.Lock()
	// a concurrent loader may have won; keep whichever landed first
	if prev, ok := s.cache[date]; ok {
		d = prev
	} else {
		s.cache[date] = d
	}
	s.mu.Unlock()
	return d
}

// fetchAll loads a set of dates with a bounded concurrent fan-out and
// returns them keyed by date. Completion order is irrelevant; only the
// joined result matters.
func (s *SummarySession) fetchAll(ctx context.Context, dates []string) map[string]dayData {
	sem := make(chan struct{}, maxFetchConcurrency)
	var wg sync.WaitGroup
	for _, date := range dates {
		wg.Add(1)
		go func(date string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s.fetch(ctx, date)
		}(date)
	}
	wg.Wait()

	out := make(map[string]dayData, len(dates))
	s.mu.Lock()
	for _, date := range dates {
		out[date] = s.cache[date]
	}
	s.mu.Unlock()
	return out
}

// ---------- Day ----------

type NutrientStat struct {
	Key         string      `json:"key"`
	Unit        string      `json:"unit"`
	Current     int         `json:"current"`
	Target      int         `json:"target"`
	Percent     int         `json:"percent"`
	Achievement Achievement `json:"achievement"`
}

type DaySummary struct {
	Date      string             `json:"date"`
	HasData   bool               `json:"hasData"`
	Nutrients []NutrientStat     `json:"nutrients"`
	Entries   []models.FoodEntry `json:"entries"`
}

// Day summarizes a single date: per-nutrient progress plus the raw entries.
func (s *SummarySession) Day(ctx context.Context, anchor time.Time) DaySummary {
	date := anchor.Format(dateLayout)
	d := s.fetch(ctx, date)

	stats := make([]NutrientStat, 0, len(Nutrients))
	for _, n := range Nutrients {
		current := nutrientValue(d.Totals, n.Key)
		target := nutrientValue(s.targets, n.Key)
		pct := 0
		if target > 0 {
			pct = int(math.Round(float64(current) / float64(target) * 100))
		}
		stats = append(stats, NutrientStat{
			Key:         n.Key,
			Unit:        n.Unit,
			Current:     current,
			Target:      target,
			Percent:     pct,
			Achievement: evaluateTarget(current, target, n.Inverted, d.HasData),
		})
	}
	return DaySummary{Date: date, HasData: d.HasData, Nutrients: stats, Entries: d.Entries}
}

// ---------- Week ----------

type WeekNutrientStat struct {
	Key      string `json:"key"`
	Achieved int    `json:"achieved"` // met days
	Total    int    `json:"total"`   // days with data
}

type WeekDayCell struct {
	Date         string                 `json:"date"`
	HasData      bool                   `json:"hasData"`
	Achievements map[string]Achievement `json:"achievements"`
}

type WeekSummary struct {
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Nutrients []WeekNutrientStat `json:"nutrients"`
	Days      []WeekDayCell      `json:"days"` // ordered Sunday..Saturday
}

// Week summarizes the Sunday-through-Saturday window containing the anchor.
// Days without data are excluded from both numerator and denominator of the
// per-nutrient achieved counts.
func (s *SummarySession) Week(ctx context.Context, anchor time.Time) WeekSummary {
	start := anchor.AddDate(0, 0, -int(anchor.Weekday()))
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = start.AddDate(0, 0, i).Format(dateLayout)
	}
	week := s.fetchAll(ctx, dates)

	stats := make([]WeekNutrientStat, 0, len(Nutrients))
	for _, n := range Nutrients {
		st := WeekNutrientStat{Key: n.Key}
		for _, date := range dates {
			d := week[date]
			if !d.HasData {
				continue
			}
			st.Total++
			if evaluateTarget(nutrientValue(d.Totals, n.Key), nutrientValue(s.targets, n.Key), n.Inverted, true) == AchievementMet {
				st.Achieved++
			}
		}
		stats = append(stats, st)
	}

	days := make([]WeekDayCell, 0, 7)
	for _, date := range dates {
		d := week[date]
		cell := WeekDayCell{Date: date, HasData: d.HasData, Achievements: map[string]Achievement{}}
		for _, n := range Nutrients {
			cell.Achievements[n.Key] = evaluateTarget(nutrientValue(d.Totals, n.Key), nutrientValue(s.targets, n.Key), n.Inverted, d.HasData)
		}
		days = append(days, cell)
	}

	return WeekSummary{Start: dates[0], End: dates[6], Nutrients: stats, Days: days}
}

// ---------- Month ----------

type MonthCell struct {
	Date    string `json:"date,omitempty"` // empty for padding cells
	Day     int    `json:"day,omitempty"`
	HasData bool   `json:"hasData"`
	Score   int    `json:"score"` // met nutrients, 0-4
	Tier    string `json:"tier"`  // good | ok | bad | "" (padding or no data)
}

type MonthSummary struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Cells []MonthCell `json:"cells"` // padding cells first, then one per day
}

// Month summarizes the calendar month containing the anchor as a grid:
// leading padding cells for the weekdays before day 1, then a scored cell
// per day.
func (s *SummarySession) Month(ctx context.Context, anchor time.Time) MonthSummary {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	dates := make([]string, daysInMonth)
	for i := 0; i < daysInMonth; i++ {
		dates[i] = first.AddDate(0, 0, i).Format(dateLayout)
	}
	month := s.fetchAll(ctx, dates)

	cells := make([]MonthCell, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, MonthCell{})
	}
	for i, date := range dates {
		d := month[date]
		score := dayScore(d.Totals, s.targets, d.HasData)
		cells = append(cells, MonthCell{
			Date:    date,
			Day:     i + 1,
			HasData: d.HasData,
			Score:   score,
			Tier:    scoreTier(score, d.HasData),
		})
	}

	return MonthSummary{Year: first.Year(), Month: int(first.Month()), Cells: cells}
}

// ---------- Year ----------

type YearMonthStat struct {
	Month        int     `json:"month"`
	Achieved     int     `json:"achieved"`
	DaysWithData int     `json:"daysWithData"`
	Percent      float64 `json:"percent"`
	Tier         string  `json:"tier"`
}

type YearSummary struct {
	Year   int             `json:"year"`
	Months []YearMonthStat `json:"months"`
}

// Year summarizes all twelve months of the anchor's year. To bound remote
// fetches, each month is sampled at every third calendar day (1, 4, 7, ...).
// A sampled day with data counts as achieved when at least three of its four
// nutrients were met.
func (s *SummarySession) Year(ctx context.Context, anchor time.Time) YearSummary {
	year := anchor.Year()

	var dates []string
	byMonth := make([][]string, 12)
	for m := 0; m < 12; m++ {
		first := time.Date(year, time.Month(m+1), 1, 0, 0, 0, 0, anchor.Location())
		daysInMonth := first.AddDate(0, 1, -1).Day()
		for day := 1; day <= daysInMonth; day += 3 {
			date := first.AddDate(0, 0, day-1).Format(dateLayout)
			byMonth[m] = append(byMonth[m], date)
			dates = append(dates, date)
		}
	}
	sampled := s.fetchAll(ctx, dates)

	months := make([]YearMonthStat, 0, 12)
	for m := 0; m < 12; m++ {
		st := YearMonthStat{Month: m + 1}
		for _, date := range byMonth[m] {
			d := sampled[date]
			if !d.HasData {
				continue
			}
			st.DaysWithData++
			if dayScore(d.Totals, s.targets, true) >= 3 {
				st.Achieved++
			}
		}
		if st.DaysWithData > 0 {
			st.Percent = math.Round(float64(st.Achieved) / float64(st.DaysWithData) * 100)
		}
		st.Tier = ratioTier(st.Percent)
		months = append(months, st)
	}

	return YearSummary{Year: year, Months: months}
}

// ---------- Navigation ----------

// Granularity names the aggregation window unit of a summary view.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// Step moves the anchor by one unit of the granularity in either direction,
// using calendar-correct month and year rollover.
func Step(anchor time.Time, g Granularity, direction int) time.Time {
	switch g {
	case GranularityDay:
		return anchor.AddDate(0, 0, direction)
	case GranularityWeek:
		return anchor.AddDate(0, 0, 7*direction)
	case GranularityMonth:
		return anchor.AddDate(0, direction, 0)
	case GranularityYear:
		return anchor.AddDate(direction, 0, 0)
	}
	return anchor
}
