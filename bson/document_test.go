package bson

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddScalars(t *testing.T) {
	testOID, _ := primitive.ObjectIDFromHex("56e1fc72e0c917e9c4714161")
	testTime := time.Date(2012, 12, 24, 12, 15, 30, 0, time.UTC)

	cases := []struct {
		label string
		key   string
		val   Value
		hex   string
	}{
		{"double", "d", Double(1.0), "10000000016400000000000000F03F00"},
		{"string", "a", String("b"), "0E00000002610002000000620000"},
		{"empty doc", "x", Document(), "0D000000037800050000000000"},
		{"undefined", "a", Undefined(), "0800000006610000"},
		{"oid", "a", ObjectIDVal(testOID), "1400000007610056E1FC72E0C917E9C471416100"},
		{"boolean", "b", Bool(true), "090000000862000100"},
		{"datetime", "a", DateTime(testTime), "10000000096100D0D6D6CC3B01000000"},
		{"null", "a", Null(), "080000000a610000"},
		{"regex", "a", RegexVal("abc", "im"), "0F0000000B610061626300696D0000"},
		{"javascript", "a", JSCode("b"), "0E0000000D610002000000620000"},
		{"int32", "i", Int32(-1), "0C000000106900FFFFFFFF00"},
		{"timestamp", "a", TimestampVal(primitive.Timestamp{T: 123456789, I: 42}), "100000001161002A00000015CD5B0700"},
		{"int64", "a", Int64(1), "10000000126100010000000000000000"},
		{"minkey", "a", MinKey(), "08000000FF610000"},
		{"maxkey", "a", MaxKey(), "080000007F610000"},
	}

	for _, c := range cases {
		d := Document()
		if err := d.AddKV(c.key, c.val); err != nil {
			t.Fatalf("%s: AddKV: %v", c.label, err)
		}
		compareValueHex(t, d, c.hex, c.label)
	}
}

func TestDBPointerAndCodeWithScope(t *testing.T) {
	testOID, _ := primitive.ObjectIDFromHex("56e1fc72e0c917e9c4714161")

	d := Document()
	if err := d.AddKV("a", DBPointerVal("b", testOID)); err != nil {
		t.Fatal(err)
	}
	compareValueHex(t, d, "1A0000000C610002000000620056E1FC72E0C917E9C471416100", "dbpointer")

	scoped, err := JSCodeWithScope("abcd", Document())
	if err != nil {
		t.Fatal(err)
	}
	d2 := Document()
	if err := d2.AddKV("a", scoped); err != nil {
		t.Fatal(err)
	}
	compareValueHex(t, d2, "1A0000000F610012000000050000006162636400050000000000", "code with scope")
}

func TestGetSetContains(t *testing.T) {
	d := Document()
	_ = d.AddKV("name", String("ruby"))
	_ = d.AddKV("legs", Int32(0))

	if !d.Contains("name") {
		t.Error("expected doc to contain name")
	}
	if d.Contains("missing") {
		t.Error("did not expect doc to contain missing")
	}

	v, err := d.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	s, err := v.ToString()
	if err != nil || s != "ruby" {
		t.Errorf("got %q, %v; want ruby, nil", s, err)
	}

	if err := d.Set("name", String("bamboo")); err != nil {
		t.Fatal(err)
	}
	if n, _ := d.Len(); n != 2 {
		t.Errorf("Set on existing key should overwrite in place, got len %d", n)
	}
	v2, _ := d.Get("name")
	s2, _ := v2.ToString()
	if s2 != "bamboo" {
		t.Errorf("got %q after Set, want bamboo", s2)
	}
}

func TestAddKVAllowsDuplicateKeys(t *testing.T) {
	d := Document()
	_ = d.AddKV("a", Int32(1))
	_ = d.AddKV("a", Int32(2))
	if n, _ := d.Len(); n != 2 {
		t.Errorf("expected duplicate keys to be tolerated, got len %d", n)
	}
	// Get returns the first occurrence.
	v, _ := d.Get("a")
	n, _ := v.ToInt32()
	if n != 1 {
		t.Errorf("Get should return first occurrence, got %d", n)
	}
}

func TestPathAndSetPath(t *testing.T) {
	d := Document()
	inner := Document()
	_ = inner.AddKV("city", String("nowhere"))
	_ = d.AddKV("address", inner)

	v, ok := d.Path("address", "city")
	if !ok {
		t.Fatal("expected path to resolve")
	}
	s, _ := v.ToString()
	if s != "nowhere" {
		t.Errorf("got %q, want nowhere", s)
	}

	if _, ok := d.Path("address", "zip"); ok {
		t.Error("expected missing path segment to fail")
	}

	if err := d.SetPath([]string{"address", "zip"}, String("00000")); err != nil {
		t.Fatal(err)
	}
	v2, ok := d.Path("address", "zip")
	if !ok {
		t.Fatal("expected zip to resolve after SetPath")
	}
	s2, _ := v2.ToString()
	if s2 != "00000" {
		t.Errorf("got %q, want 00000", s2)
	}
}

func TestMergeAndUpdate(t *testing.T) {
	a := Document()
	_ = a.AddKV("name", String("ruby"))
	_ = a.AddKV("legs", Int32(4))
	aNested := Document()
	_ = aNested.AddKV("color", String("red"))
	_ = a.AddKV("tags", aNested)

	b := Document()
	_ = b.AddKV("legs", Int32(0))
	bNested := Document()
	_ = bNested.AddKV("size", String("small"))
	_ = b.AddKV("tags", bNested)
	_ = b.AddKV("extra", Bool(true))

	merged := Merge(a, b)
	legs, _ := merged.Get("legs")
	n, _ := legs.ToInt32()
	if n != 4 {
		t.Errorf("expected a's value to win on conflict, got %d", n)
	}
	extra, _ := merged.Get("extra")
	eb, _ := extra.ToBool()
	if !eb {
		t.Error("expected b-only key to be present after merge")
	}
	tags, _ := merged.Get("tags")
	color, _ := tags.Get("color")
	cs, _ := color.ToString()
	if cs != "red" {
		t.Errorf("expected nested merge to keep a's color, got %q", cs)
	}
	size, _ := tags.Get("size")
	ss, _ := size.ToString()
	if ss != "small" {
		t.Errorf("expected nested merge to add b's size, got %q", ss)
	}

	if err := a.Update(b); err != nil {
		t.Fatal(err)
	}
	legsAfter, _ := a.Get("legs")
	na, _ := legsAfter.ToInt32()
	if na != 4 {
		t.Errorf("Update should follow the same merge law, got %d", na)
	}
}

func TestRoundTrip(t *testing.T) {
	d := Document()
	_ = d.AddKV("name", String("ruby"))
	_ = d.AddKV("legs", Int32(0))
	nested := Document()
	_ = nested.AddKV("color", String("red"))
	_ = d.AddKV("tags", nested)
	arr, _ := NewArray(int32(1), int32(2), int32(3))
	_ = d.AddKV("nums", arr)

	buf, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Keys()[0] != "name" || parsed.Keys()[1] != "legs" {
		t.Errorf("round-trip should preserve key order, got %v", parsed.Keys())
	}
	buf2, err := parsed.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != string(buf2) {
		t.Error("re-encoding a round-tripped document should be byte-identical")
	}
}

func TestKindMismatch(t *testing.T) {
	s := String("hi")
	if _, err := s.Get("x"); err != ErrKindMismatch {
		t.Errorf("Get on scalar: got %v, want ErrKindMismatch", err)
	}
	if _, err := s.ToInt32(); err != ErrKindMismatch {
		t.Errorf("ToInt32 on string: got %v, want ErrKindMismatch", err)
	}
	d := Document()
	if _, err := d.ToString(); err != ErrKindMismatch {
		t.Errorf("ToString on document: got %v, want ErrKindMismatch", err)
	}
}
