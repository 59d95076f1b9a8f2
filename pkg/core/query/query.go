// Package query builds and runs filtered, sorted, paginated participant
// searches. It describes a search as a Query value; rendering it against a
// concrete store is left to the Finder.
package query

// Op is a predicate comparison
type Op string

const (
	OpEq       Op = "eq"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpContains Op = "contains" // case-insensitive substring
)

// Participant columns that predicates and ordering may refer to
const (
	FieldID                     = "id"
	FieldGender                 = "gender"
	FieldAge                    = "age"
	FieldName                   = "name"
	FieldMonths                 = "months"
	FieldFirstRegistrationMonth = "first_registration_month"
	FieldPhone                  = "phone"
	FieldFee                    = "fee"
	FieldReRegistration         = "re_registration"
	FieldLatestRegistration     = "latest_registration"
	FieldCurrentMeetingID       = "current_meeting_id"
	FieldCreatedAt              = "created_at"
)

// Predicate is a single condition. Value is a string, int or bool.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

type OrderTerm struct {
	Field      string
	Descending bool
}

// Window restricts the result to Limit rows starting at Offset
type Window struct {
	Offset int
	Limit  int
}

// Query is a store-agnostic participant search. Predicates are AND-ed.
// A nil Window returns every matching row.
type Query struct {
	Predicates []Predicate
	Order      []OrderTerm
	Window     *Window
}
