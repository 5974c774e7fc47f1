package docid

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{"", "a", "pmc123456", "exactly-19-chars-xx"}
	for _, id := range cases {
		buf, err := Encode(id)
		if err != nil {
			t.Fatalf("Encode(%q): %v", id, err)
		}
		got := Decode(buf)
		if got != id {
			t.Errorf("Decode(Encode(%q)) = %q, want %q", id, got, id)
		}
	}
}

func TestEncodeRejectsOverlong(t *testing.T) {
	id := "this-document-id-is-way-too-long-to-fit"
	if _, err := Encode(id); err == nil {
		t.Fatalf("Encode(%q) succeeded, want error", id)
	}
}

func TestEncodeFullWidthNoTerminator(t *testing.T) {
	id := "12345678901234567890" // exactly Width bytes
	buf, err := Encode(id)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if Decode(buf) != id {
		t.Errorf("Decode = %q, want %q", Decode(buf), id)
	}
}

func TestDecodeSliceTrimsTrailingNulls(t *testing.T) {
	buf := make([]byte, Width)
	copy(buf, "abc")
	if got := DecodeSlice(buf); got != "abc" {
		t.Errorf("DecodeSlice = %q, want %q", got, "abc")
	}
}

func TestDecodeSliceEmpty(t *testing.T) {
	buf := make([]byte, Width)
	if got := DecodeSlice(buf); got != "" {
		t.Errorf("DecodeSlice(all zero) = %q, want empty", got)
	}
}
