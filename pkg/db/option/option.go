// Package option provides composable query options for the generic store.
package option

import "gorm.io/gorm"

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ  Operator = "="
	GTE Operator = ">="
	LTE Operator = "<="
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type conditionOption struct {
	cond Condition
}

func (o conditionOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(o.cond.Field+" "+string(o.cond.Operator)+" ?", o.cond.Value)
}

// ApplyOperator filters on a single field with the given operator.
func ApplyOperator(cond Condition) QueryOption {
	return conditionOption{cond: cond}
}

type orderOption struct {
	expr string
}

func (o orderOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.expr)
}

// WithOrder sorts results by the given column expression, e.g. "created_at DESC".
func WithOrder(expr string) QueryOption {
	return orderOption{expr: expr}
}

type limitOption struct {
	n int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(o.n)
}

func WithLimit(n int) QueryOption {
	return limitOption{n: n}
}
