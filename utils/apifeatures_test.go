package utils

import (
	"encoding/json"
	"net/url"
	"reflect"
	"testing"
)

var testFields = FieldMap{
	"price":          "price",
	"difficulty":     "difficulty",
	"ratingsAverage": "ratings_average",
	"createdAt":      "created_at",
}

func TestParseQueryFilters(t *testing.T) {
	q, _ := url.ParseQuery("difficulty=easy&price[lt]=1500&ratingsAverage[gte]=4.7&secret=true&page=2&sort=price&limit=5&fields=name")
	f := ParseQuery(q, testFields)

	got := map[string]condition{}
	for _, c := range f.conditions {
		got[c.column] = c
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 conditions (unknown key ignored), got %+v", f.conditions)
	}
	if c := got["price"]; c.op != "<" || c.values[0] != float64(1500) {
		t.Errorf("price condition = %+v", c)
	}
	if c := got["ratings_average"]; c.op != ">=" || c.values[0] != 4.7 {
		t.Errorf("rating condition = %+v", c)
	}
	if c := got["difficulty"]; c.op != "=" || c.values[0] != "easy" {
		t.Errorf("difficulty condition = %+v", c)
	}
	if f.Page != 2 || f.Limit != 5 {
		t.Errorf("page/limit = %d/%d", f.Page, f.Limit)
	}
}

func TestParseQueryRepeatedValuesBecomeIn(t *testing.T) {
	q, _ := url.ParseQuery("difficulty=easy&difficulty=medium")
	f := ParseQuery(q, testFields)
	if len(f.conditions) != 1 || len(f.conditions[0].values) != 2 {
		t.Fatalf("conditions = %+v", f.conditions)
	}
}

func TestParseQuerySort(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"created_at DESC"}},
		{"sort=-ratingsAverage,price", []string{"ratings_average DESC", "price ASC"}},
		{"sort=password,price", []string{"price ASC"}},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		f := ParseQuery(q, testFields)
		if !reflect.DeepEqual(f.order, tt.want) {
			t.Errorf("%q: order = %v, want %v", tt.query, f.order, tt.want)
		}
	}
}

func TestParseQueryPaginationDefaults(t *testing.T) {
	f := ParseQuery(url.Values{}, testFields)
	if f.Page != 1 || f.Limit != 100 {
		t.Errorf("defaults = %d/%d", f.Page, f.Limit)
	}
	q, _ := url.ParseQuery("page=-1&limit=1000")
	f = ParseQuery(q, testFields)
	if f.Page != 1 || f.Limit != 100 {
		t.Errorf("clamped = %d/%d", f.Page, f.Limit)
	}
}

func TestProjectKeepsRequestedFieldsAndID(t *testing.T) {
	type doc struct {
		ID    uint    `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Slug  string  `json:"slug"`
	}
	q, _ := url.ParseQuery("fields=name,price")
	f := ParseQuery(q, testFields)

	out, err := f.Project([]doc{{ID: 1, Name: "The Forest Hiker", Price: 397, Slug: "the-forest-hiker"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(out)
	var got []map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("projected = %s", b)
	}
	if _, ok := got[0]["slug"]; ok {
		t.Errorf("slug should be dropped: %s", b)
	}
	if got[0]["name"] != "The Forest Hiker" || got[0]["id"] != float64(1) {
		t.Errorf("projected = %s", b)
	}
}

func TestProjectWithoutFieldsIsIdentity(t *testing.T) {
	items := []int{1, 2}
	out, err := ParseQuery(url.Values{}, testFields).Project(items)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, items) {
		t.Errorf("out = %v", out)
	}
}
