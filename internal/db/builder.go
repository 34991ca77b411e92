package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SchemaDefinition describes the backing table.
type SchemaDefinition struct {
	Table      string
	Dimensions int
}

// Validate checks that the schema definition is well-formed.
func (d *SchemaDefinition) Validate() error {
	if !IsValidIdentifier(d.Table) {
		return errors.New("table name contains invalid characters")
	}
	if d.Dimensions <= 0 {
		return errors.New("vector dimensions must be positive")
	}
	return nil
}

// IndexDefinition is an HNSW index definition over the embedding column.
type IndexDefinition struct {
	Table string
	Name  string
	// HNSW build parameters; zero means backend default.
	M              int
	EFConstruction int
}

// Validate checks that the index definition is well-formed.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Table) {
		return errors.New("table name contains invalid characters")
	}
	if !IsValidIdentifier(d.Name) {
		return errors.New("index name contains invalid characters")
	}
	return nil
}

// Cond is a single comparison over a metadata field.
type Cond struct {
	Field string
	Op    string // ==, !=, >, >=, <, <=
	Value any
}

// Expr is a boolean expression tree over metadata fields. A node is either a
// leaf comparison (Cond set) or a group of children joined by Join.
type Expr struct {
	Cond     *Cond
	Join     string // AND or OR
	Children []*Expr
}

// KNNQuery is a single similarity search: vector ranking plus optional filter
// fragments, all composed via logical AND.
type KNNQuery struct {
	Table          string
	Vector         []float32
	Limit          int
	MetadataEquals map[string]string
	Predicate      *Expr
	// Inclusive id bounds derived from the query's time range. Empty means
	// unbounded.
	IDMin string
	IDMax string
}

// NewKNNQuery starts building a similarity search against a table.
func NewKNNQuery(table string, vector []float32) *KNNQueryBuilder {
	return &KNNQueryBuilder{q: KNNQuery{Table: table, Vector: vector}}
}

// KNNQueryBuilder is a fluent builder for KNNQuery.
type KNNQueryBuilder struct {
	q KNNQuery
}

// Limit caps the ranked output.
func (b *KNNQueryBuilder) Limit(n int) *KNNQueryBuilder {
	b.q.Limit = n
	return b
}

// MetadataEquals restricts to rows whose metadata contains all given pairs.
func (b *KNNQueryBuilder) MetadataEquals(filter map[string]string) *KNNQueryBuilder {
	b.q.MetadataEquals = filter
	return b
}

// Predicate restricts with a boolean expression tree.
func (b *KNNQueryBuilder) Predicate(e *Expr) *KNNQueryBuilder {
	b.q.Predicate = e
	return b
}

// IDRange restricts to ids within [minID, maxID]. Empty bounds are open.
func (b *KNNQueryBuilder) IDRange(minID, maxID string) *KNNQueryBuilder {
	b.q.IDMin = minID
	b.q.IDMax = maxID
	return b
}

// Build validates and returns the query.
func (b *KNNQueryBuilder) Build() (*KNNQuery, error) {
	if err := b.q.Validate(); err != nil {
		return nil, err
	}
	return &b.q, nil
}

// Validate checks that the query is well-formed.
func (q *KNNQuery) Validate() error {
	if !IsValidIdentifier(q.Table) {
		return errors.New("table name contains invalid characters")
	}
	if len(q.Vector) == 0 {
		return errors.New("query vector is required")
	}
	if q.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	if q.Predicate != nil {
		if err := validateExpr(q.Predicate); err != nil {
			return err
		}
	}
	return nil
}

// SQL renders the query to a parameterized statement. The vector is always
// $1; filter fragments take the following placeholders. Results are ordered
// by ascending distance with ascending id as the deterministic tie-break.
func (q *KNNQuery) SQL(vectorArg any) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	args := []any{vectorArg}
	var where []string

	if len(q.MetadataEquals) > 0 {
		filterJSON, err := json.Marshal(q.MetadataEquals)
		if err != nil {
			return "", nil, fmt.Errorf("marshal metadata filter: %w", err)
		}
		args = append(args, string(filterJSON))
		where = append(where, "metadata @> $"+strconv.Itoa(len(args))+"::jsonb")
	}

	// Id-range prune runs before distance ranking: ids encode creation time,
	// so a time range never needs a timestamp column.
	if q.IDMin != "" {
		args = append(args, q.IDMin)
		where = append(where, "id >= $"+strconv.Itoa(len(args)))
	}
	if q.IDMax != "" {
		args = append(args, q.IDMax)
		where = append(where, "id <= $"+strconv.Itoa(len(args)))
	}

	if q.Predicate != nil {
		frag, predArgs, err := renderExpr(q.Predicate, len(args))
		if err != nil {
			return "", nil, err
		}
		args = append(args, predArgs...)
		where = append(where, frag)
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, metadata, contents, embedding, embedding <=> $1 AS distance FROM ")
	sb.WriteString(q.Table)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY distance, id LIMIT ")
	sb.WriteString(strconv.Itoa(q.Limit))

	return sb.String(), args, nil
}

var condOps = map[string]string{
	"==": "=", "!=": "<>", ">": ">", ">=": ">=", "<": "<", "<=": "<=",
}

func validateExpr(e *Expr) error {
	if e.Cond != nil {
		if e.Cond.Field == "" {
			return errors.New("predicate field is required")
		}
		if _, ok := condOps[e.Cond.Op]; !ok {
			return fmt.Errorf("invalid predicate operator %q", e.Cond.Op)
		}
		return nil
	}
	if e.Join != "AND" && e.Join != "OR" {
		return fmt.Errorf("invalid predicate combinator %q", e.Join)
	}
	if len(e.Children) == 0 {
		return errors.New("predicate group has no children")
	}
	for _, c := range e.Children {
		if err := validateExpr(c); err != nil {
			return err
		}
	}
	return nil
}

// renderExpr walks the tree producing a SQL fragment over metadata->>'field'
// accessors. offset is the number of placeholders already consumed.
func renderExpr(e *Expr, offset int) (string, []any, error) {
	if e.Cond != nil {
		return renderCond(e.Cond, offset)
	}

	frags := make([]string, 0, len(e.Children))
	var args []any
	for _, c := range e.Children {
		frag, childArgs, err := renderExpr(c, offset+len(args))
		if err != nil {
			return "", nil, err
		}
		frags = append(frags, frag)
		args = append(args, childArgs...)
	}
	return "(" + strings.Join(frags, " "+e.Join+" ") + ")", args, nil
}

func renderCond(c *Cond, offset int) (string, []any, error) {
	op := condOps[c.Op]
	accessor := "metadata->>'" + strings.ReplaceAll(c.Field, "'", "''") + "'"
	placeholder := "$" + strconv.Itoa(offset+1)

	switch v := c.Value.(type) {
	case int, int32, int64, float32, float64:
		return "(" + accessor + ")::numeric " + op + " " + placeholder, []any{v}, nil
	case bool:
		return "(" + accessor + ")::boolean " + op + " " + placeholder, []any{v}, nil
	case time.Time:
		return "(" + accessor + ")::timestamptz " + op + " " + placeholder, []any{v}, nil
	case string:
		return accessor + " " + op + " " + placeholder, []any{v}, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate value type %T for field %q", c.Value, c.Field)
	}
}

// IsValidIdentifier returns true if s is a safe SQL identifier:
// [a-zA-Z_][a-zA-Z0-9_]*.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !(isDigit && i > 0) {
			return false
		}
	}
	return true
}
