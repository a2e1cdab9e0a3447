package model

// Protocol item kinds as stored in protocol files
const (
	ItemCategory   = "category"
	ItemObservable = "observable"
)

// Category actions
const (
	ActionContinuous = "continuous"
	ActionDiscrete   = "discrete"
)

// Observable is a named state a data reading can switch on
type Observable struct {
	ID   string
	Name string
}

// Category groups observables that share a behavioral dimension
type Category struct {
	ID          string
	Name        string
	Action      string
	Observables []Observable
}

// IsContinuous reports whether observables of the category last until the
// next reading of the same category. Categories default to continuous.
func (c Category) IsContinuous() bool {
	return c.Action != ActionDiscrete
}

// HasObservable reports whether the category contains an observable called name
func (c Category) HasObservable(name string) bool {
	for _, o := range c.Observables {
		if o.Name == name {
			return true
		}
	}
	return false
}

// ObservableNames lists the observable names in protocol order
func (c Category) ObservableNames() []string {
	names := make([]string, len(c.Observables))
	for i, o := range c.Observables {
		names[i] = o.Name
	}
	return names
}

// Protocol is the researcher-defined set of categories readings refer to
type Protocol struct {
	ID         int64
	Name       string
	Categories []Category
}

// CategoryOf returns the first category containing an observable called name
func (p Protocol) CategoryOf(name string) (Category, bool) {
	for _, c := range p.Categories {
		if c.HasObservable(name) {
			return c, true
		}
	}
	return Category{}, false
}

// Observables flattens every observable of the protocol in order
func (p Protocol) Observables() []Observable {
	var all []Observable
	for _, c := range p.Categories {
		all = append(all, c.Observables...)
	}
	return all
}
