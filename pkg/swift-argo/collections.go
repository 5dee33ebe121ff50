package swiftargo

// StringCollection is a gomobile-compatible interface for passing string collections from Swift.
// Note: gomobile doesn't support returning slices, so we use Get(i) + Size() pattern.
type StringCollection interface {
	Add(s string) StringCollection
	Get(i int) string
	Size() int
}

type StringArray struct {
	items []string
}

// NewStringArray creates a new empty StringArray.
// This is the constructor that should be used from Swift via gomobile.
func NewStringArray() *StringArray {
	return &StringArray{items: []string{}}
}

func (a *StringArray) Add(s string) StringCollection {
	a.items = append(a.items, s)

	return a
}

func (a *StringArray) Get(i int) string {
	if i < 0 || i >= len(a.items) {
		return ""
	}

	return a.items[i]
}

func (a *StringArray) Size() int {
	return len(a.items)
}

func (a *StringArray) All() []string {
	return a.items
}

// FloatCollection carries actions into and observations out of the environment.
type FloatCollection interface {
	Add(v float64) FloatCollection
	Get(i int) float64
	Size() int
}

type FloatArray struct {
	items []float64
}

func NewFloatArray() *FloatArray {
	return &FloatArray{items: []float64{}}
}

func (a *FloatArray) Add(v float64) FloatCollection {
	a.items = append(a.items, v)

	return a
}

// Get returns 0 out of bounds.
func (a *FloatArray) Get(i int) float64 {
	if i < 0 || i >= len(a.items) {
		return 0
	}

	return a.items[i]
}

func (a *FloatArray) Size() int {
	return len(a.items)
}

func (a *FloatArray) All() []float64 {
	return a.items
}
