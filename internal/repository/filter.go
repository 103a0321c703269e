package repository

import (
	"fmt"
	"strings"

	"github.com/escalando-ong/cms-api/internal/models"
)

// Op enumerates the supported predicate operators.
type Op string

const (
	// OpContains matches a case-insensitive substring on a text column.
	OpContains Op = "contains"
	// OpHasTag matches membership in a text-array column.
	OpHasTag Op = "has_tag"
	// OpGte and OpLte bound a range column.
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Predicate is one validated filter condition. Building queries from typed
// predicates instead of free-form maps keeps the field and operator surface
// fixed.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
	// Or groups this predicate with the previous one instead of AND-ing it.
	Or bool
}

var contentFilterFields = map[string]map[Op]bool{
	"title_es":    {OpContains: true},
	"title_en":    {OpContains: true},
	"category_es": {OpContains: true},
	"author":      {OpContains: true},
	"tags_es":     {OpHasTag: true},
	"date":        {OpGte: true, OpLte: true},
}

// ContentPredicates converts a list filter into validated predicates. The
// search term fans out over the text columns and the Spanish tag list.
func ContentPredicates(filter models.ContentFilter) []Predicate {
	var preds []Predicate

	if q := strings.TrimSpace(filter.Search); q != "" {
		preds = append(preds,
			Predicate{Field: "title_es", Op: OpContains, Value: q},
			Predicate{Field: "title_en", Op: OpContains, Value: q, Or: true},
			Predicate{Field: "category_es", Op: OpContains, Value: q, Or: true},
			Predicate{Field: "author", Op: OpContains, Value: q, Or: true},
			Predicate{Field: "tags_es", Op: OpHasTag, Value: q, Or: true},
		)
	}
	if filter.DateFrom != nil {
		preds = append(preds, Predicate{Field: "date", Op: OpGte, Value: *filter.DateFrom})
	}
	if filter.DateTo != nil {
		preds = append(preds, Predicate{Field: "date", Op: OpLte, Value: *filter.DateTo})
	}

	return preds
}

// BuildWhere compiles predicates into a WHERE fragment with positional args.
// Predicates referencing unknown field/operator pairs are rejected.
func BuildWhere(preds []Predicate) (string, []interface{}, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}

	var groups []string
	var orGroup []string
	var args []interface{}

	flush := func() {
		if len(orGroup) == 1 {
			groups = append(groups, orGroup[0])
		} else if len(orGroup) > 1 {
			groups = append(groups, "("+strings.Join(orGroup, " OR ")+")")
		}
		orGroup = nil
	}

	for _, p := range preds {
		ops, ok := contentFilterFields[p.Field]
		if !ok || !ops[p.Op] {
			return "", nil, fmt.Errorf("unsupported filter %s %s", p.Field, p.Op)
		}

		var cond string
		switch p.Op {
		case OpContains:
			args = append(args, "%"+strings.ToLower(fmt.Sprintf("%v", p.Value))+"%")
			cond = fmt.Sprintf("LOWER(%s) LIKE $%d", p.Field, len(args))
		case OpHasTag:
			args = append(args, fmt.Sprintf("%v", p.Value))
			cond = fmt.Sprintf("$%d = ANY(%s)", len(args), p.Field)
		case OpGte:
			args = append(args, p.Value)
			cond = fmt.Sprintf("%s >= $%d", p.Field, len(args))
		case OpLte:
			args = append(args, p.Value)
			cond = fmt.Sprintf("%s <= $%d", p.Field, len(args))
		}

		if p.Or && len(orGroup) > 0 {
			orGroup = append(orGroup, cond)
			continue
		}
		flush()
		orGroup = []string{cond}
	}
	flush()

	return " AND " + strings.Join(groups, " AND "), args, nil
}
