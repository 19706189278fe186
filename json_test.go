package bdf

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalJSON(t *testing.T) {
	doc := parse(t, `{"a": [1B, 2.5, NaN, -InfinityF], "b": undefined, "c": int(1, 2), "s": "q\u0022<", "e": {}}`)
	data := must(doc.MarshalJSON())
	eq(t, string(data), `{"a":[1,2.5,null,null],"b":null,"c":[1,2],"s":"q\"\u003c","e":{}}`)

	wrapped := must(json.Marshal(map[string]any{"doc": doc}))
	eq(t, string(wrapped), `{"doc":{"a":[1,2.5,null,null],"b":null,"c":[1,2],"s":"q\"\u003c","e":{}}}`)
}

func TestUnmarshalJSON(t *testing.T) {
	doc := must(UnmarshalJSON([]byte(`{"x": [1, 1e2, 3000000000, -0.5, null, true, "s"], "y": {}, "a": []}`)))
	eq(t, doc.String(), `{"x": [1I, 100D, 3000000000L, -0.5D, undefined, true, "s"], "y": {}, "a": []}`)

	loc, _ := doc.Symbols().Location("y")
	eq(t, loc, Location(1))
}

func TestUnmarshalJSON_Invalid(t *testing.T) {
	for _, s := range []string{``, `{`, `[1,]`, `1 2`, `{"a" 1}`} {
		if _, err := UnmarshalJSON([]byte(s)); err == nil {
			t.Errorf("UnmarshalJSON(%q) succeeded, wanted error", s)
		}
	}
}

func TestUnmarshalJSON_MaxDepth(t *testing.T) {
	nested := func(n int) []byte {
		return []byte(strings.Repeat("[", n) + strings.Repeat("]", n))
	}
	doc := must(UnmarshalJSON(nested(DefaultMaxDepth)))
	eq(t, doc.Root().Type(), TypeList)

	if _, err := UnmarshalJSON(nested(DefaultMaxDepth + 1)); err == nil {
		t.Errorf("UnmarshalJSON of %d nested arrays succeeded, wanted error", DefaultMaxDepth+1)
	}
}
