package plot

import (
	"sort"

	"github.com/pivolan/data_visualizer/domain/models"
)

// categoryOrder lists the distinct non-missing values of a column: ascending
// for numeric columns, in order of appearance otherwise.
func categoryOrder(col models.Column) []models.Value {
	seen := make(map[string]bool)
	order := make([]models.Value, 0)
	for _, v := range col.Values {
		if v.IsMissing() || seen[v.Key()] {
			continue
		}
		seen[v.Key()] = true
		order = append(order, v)
	}
	if col.IsNumeric() {
		sort.SliceStable(order, func(i, j int) bool { return order[i].Num < order[j].Num })
	}
	return order
}

// axis maps column cells onto chart coordinates. Numeric columns map to
// themselves, other columns to the position of their category.
type axis struct {
	numeric  bool
	labels   []string
	position map[string]int
}

func newAxis(col models.Column) axis {
	a := axis{numeric: col.IsNumeric()}
	if a.numeric {
		return a
	}
	order := categoryOrder(col)
	a.labels = make([]string, len(order))
	a.position = make(map[string]int, len(order))
	for i, v := range order {
		a.labels[i] = v.String()
		a.position[v.Key()] = i
	}
	return a
}

func (a axis) coordinate(v models.Value) (float64, bool) {
	if v.IsMissing() {
		return 0, false
	}
	if a.numeric {
		return v.Num, true
	}
	i, ok := a.position[v.Key()]
	return float64(i), ok
}
