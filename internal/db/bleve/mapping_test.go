package bleve

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	src := []byte(`{"name":"React","keywords":["UI",""],"maintainers":[{"username":"a"},{"username":"B"}],"flags":{"unstable":true,"insecure":2},"score":{"final":0.5}}`)
	flat, err := flatten(testIndex(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		field string
		want  any
	}{
		{"name", []string{"react"}},
		{"name_text", []string{"React"}},
		{"keywords", []string{"ui"}},
		{"maintainers_username", []string{"a", "b"}},
		{"flags_unstable", []string{"true"}},
		{"flags_insecure", []float64{2}},
		{"score", []float64{0.5}},
	}
	for _, tt := range tests {
		if got := flat[tt.field]; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.field, got, tt.want)
		}
	}

	if _, ok := flat["description"]; ok {
		t.Error("absent fields must not be set")
	}
	present, _ := flat[presentField].([]string)
	for _, f := range []string{"name", "flags_unstable", "flags_insecure"} {
		if !contains(present, f) {
			t.Errorf("%s missing from %v", f, present)
		}
	}
	if contains(present, "flags_deprecated") {
		t.Error("flags_deprecated must be absent")
	}
	if flat[sourceField] != string(src) {
		t.Error("source must be stored verbatim")
	}
}

func TestPathSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"$.name", []string{"name"}},
		{"$.maintainers[*].email", []string{"maintainers[*]", "email"}},
		{"$", nil},
	}
	for _, tt := range tests {
		if got := pathSegments(tt.path); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("pathSegments(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
