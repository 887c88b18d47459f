package utils

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// FieldMap whitelists the JSON field names a list endpoint may filter or
// sort on, mapped to their column names.
type FieldMap map[string]string

const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 100
)

var (
	reservedParams = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}
	operatorParam  = regexp.MustCompile(`^(\w+)\[(gte|gt|lte|lt)\]$`)
	sqlOperators   = map[string]string{"gte": ">=", "gt": ">", "lte": "<=", "lt": "<"}
)

type condition struct {
	column string
	op     string
	values []any
}

// APIFeatures turns list query strings (filter, sort, fields, page, limit)
// into gorm clauses.
type APIFeatures struct {
	conditions []condition
	order      []string
	fields     []string
	Page       int
	Limit      int
}

func ParseQuery(q url.Values, allowed FieldMap) *APIFeatures {
	f := &APIFeatures{Page: defaultPage, Limit: defaultLimit}

	for key, raw := range q {
		if reservedParams[key] || len(raw) == 0 {
			continue
		}
		field, op := key, "="
		if m := operatorParam.FindStringSubmatch(key); m != nil {
			field, op = m[1], sqlOperators[m[2]]
		}
		col, ok := allowed[field]
		if !ok {
			continue
		}
		values := make([]any, 0, len(raw))
		for _, v := range raw {
			values = append(values, typedValue(v))
		}
		f.conditions = append(f.conditions, condition{column: col, op: op, values: values})
	}

	sortParam := q.Get("sort")
	if sortParam == "" {
		sortParam = "-createdAt"
	}
	for _, s := range strings.Split(sortParam, ",") {
		s = strings.TrimSpace(s)
		dir := "ASC"
		if strings.HasPrefix(s, "-") {
			dir, s = "DESC", s[1:]
		}
		if col, ok := allowed[s]; ok {
			f.order = append(f.order, col+" "+dir)
		}
	}

	if fields := q.Get("fields"); fields != "" {
		for _, name := range strings.Split(fields, ",") {
			if name = strings.TrimSpace(name); name != "" {
				f.fields = append(f.fields, name)
			}
		}
	}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		f.Limit = l
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

func typedValue(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func (f *APIFeatures) Filter(db *gorm.DB) *gorm.DB {
	for _, c := range f.conditions {
		switch {
		case c.op == "=" && len(c.values) > 1:
			db = db.Where(c.column+" IN ?", c.values)
		default:
			db = db.Where(c.column+" "+c.op+" ?", c.values[len(c.values)-1])
		}
	}
	return db
}

func (f *APIFeatures) Sort(db *gorm.DB) *gorm.DB {
	for _, o := range f.order {
		db = db.Order(o)
	}
	return db.Order("id ASC")
}

func (f *APIFeatures) Paginate(db *gorm.DB) *gorm.DB {
	return db.Offset((f.Page - 1) * f.Limit).Limit(f.Limit)
}

// Apply runs filter, sort and pagination in that order.
func (f *APIFeatures) Apply(db *gorm.DB) *gorm.DB {
	return f.Paginate(f.Sort(f.Filter(db)))
}

// Fields reports the requested output fields, nil when all are wanted.
func (f *APIFeatures) Fields() []string { return f.fields }

// Project keeps only the requested JSON fields (plus id) of every item.
// items must marshal to a JSON array of objects.
func (f *APIFeatures) Project(items any) (any, error) {
	if len(f.fields) == 0 {
		return items, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var docs []map[string]json.RawMessage
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, err
	}
	out := make([]map[string]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		p := map[string]json.RawMessage{"id": d["id"]}
		for _, name := range f.fields {
			if v, ok := d[name]; ok {
				p[name] = v
			}
		}
		out = append(out, p)
	}
	return out, nil
}
