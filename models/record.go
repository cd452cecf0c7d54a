package models

// TargetSet holds one value per tracked nutrient. It doubles as the shape
// of a day's summed totals: calories in kcal, protein in g, sodium in mg
// (upper bound rather than goal), water in ml.
type TargetSet struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Sodium   int `json:"sodium"`
	Water    int `json:"water"`
}

// Add returns the componentwise sum of two target sets.
func (t TargetSet) Add(o TargetSet) TargetSet {
	return TargetSet{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Sodium:   t.Sodium + o.Sodium,
		Water:    t.Water + o.Water,
	}
}

const (
	SourceManual = "manual"
	SourceAI     = "ai"
)

// FoodEntry is one logged food item. The id only needs to be unique within
// its date's entry list.
type FoodEntry struct {
	ID       string `json:"id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Sodium   int    `json:"sodium"`
	Water    int    `json:"water"`
	Source   string `json:"source"` // manual | ai
}

// Nutrients returns the entry's nutrient fields as a TargetSet.
func (e FoodEntry) Nutrients() TargetSet {
	return TargetSet{Calories: e.Calories, Protein: e.Protein, Sodium: e.Sodium, Water: e.Water}
}

// DayRecord is the unit of persistence: all entries for one date plus their
// summed totals. Totals are recomputed on every mutation, never stored
// independently of the entries.
type DayRecord struct {
	Date    string      `json:"date"`
	Entries []FoodEntry `json:"entries"`
	Totals  TargetSet   `json:"totals"`
}

// EmptyDayRecord returns the zero-valued record synthesized for a date with
// nothing stored.
func EmptyDayRecord(date string) DayRecord {
	return DayRecord{Date: date, Entries: []FoodEntry{}, Totals: TargetSet{}}
}

// RecomputeTotals overwrites Totals with the exact componentwise sum over
// Entries.
func (r *DayRecord) RecomputeTotals() {
	sum := TargetSet{}
	for _, e := range r.Entries {
		sum = sum.Add(e.Nutrients())
	}
	r.Totals = sum
}

// HasData reports whether the day has at least one entry. Achievement
// evaluation treats a day with any entry as having data for every nutrient.
func (r DayRecord) HasData() bool {
	return len(r.Entries) > 0
}
