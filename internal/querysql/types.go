package querysql

// Predicate is a WHERE condition.
//
// This is a sealed interface - only types in this package implement it, so
// Compile can switch over every case.
type Predicate interface {
	predicateNode()
}

// Equals matches rows where Field = Value.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// AtLeast matches rows where Field >= Value.
type AtLeast struct {
	Field string
	Value any
}

func (AtLeast) predicateNode() {}

// And matches rows satisfying every predicate. An empty And matches all rows.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Select reads Columns from a table.
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order_by>, id
type Select struct {
	From    string
	Columns []string  // required; no SELECT *
	Filter  Predicate // nil = no filter
	OrderBy []string  // ascending keys before the id tiebreaker
}

// Where builds a conjunction from the non-nil predicates, dropping the
// wrapper when there is only one. It returns nil when all are nil.
func Where(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Predicates: kept}
}
