package domain

// Category is one requirement the trainee must cover when handling a complaint.
type Category string

const (
	CategoryApology     Category = "apology"
	CategoryCause       Category = "cause"
	CategoryRemediation Category = "remediation"
	CategoryOffer       Category = "offer"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryApology,
	CategoryCause,
	CategoryRemediation,
	CategoryOffer,
}

var categoryLabels = map[Category]string{
	CategoryApology:     "謝罪",
	CategoryCause:       "原因",
	CategoryRemediation: "改善",
	CategoryOffer:       "提案",
}

// Label returns the Japanese label shown to trainees and to the model.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Checklist maps each category to whether it has been satisfied.
// Flags only ever move from false to true.
type Checklist map[Category]bool

// NewChecklist returns a checklist with every category unsatisfied.
func NewChecklist() Checklist {
	c := make(Checklist, len(Categories))
	for _, cat := range Categories {
		c[cat] = false
	}
	return c
}

// Merge ORs hits into the checklist. A satisfied category stays satisfied.
func (c Checklist) Merge(hits map[Category]bool) {
	for _, cat := range Categories {
		if hits[cat] {
			c[cat] = true
		}
	}
}

// Complete reports whether every category is satisfied.
func (c Checklist) Complete() bool {
	for _, cat := range Categories {
		if !c[cat] {
			return false
		}
	}
	return true
}

// Remaining returns the unsatisfied categories in display order.
func (c Checklist) Remaining() []Category {
	var out []Category
	for _, cat := range Categories {
		if !c[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// Clone returns an independent copy.
func (c Checklist) Clone() Checklist {
	if c == nil {
		return nil
	}
	out := make(Checklist, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
