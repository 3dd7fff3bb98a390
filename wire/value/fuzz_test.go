package value

import "testing"

// FuzzDecodeNeverPanics feeds arbitrary bytes to Decode/Skip; malformed
// input must fail with a buserr sentinel, never panic.
func FuzzDecodeNeverPanics(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{byte(KindU32), 0xff})
	f.Add([]byte{byte(KindString), 0x04, 'a', 'b'})
	f.Add([]byte{byte(KindVec), 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _, _ = Decode(data)
		_, _ = Skip(data)
	})
}

func FuzzEncodeDecodeStrings(f *testing.F) {
	f.Add("")
	f.Add("hello")
	f.Add("\x00\x01unicode: é中")

	f.Fuzz(func(t *testing.T, s string) {
		enc, err := Encode(StringValue(s))
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		dec, n, err := Decode(enc)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if n != len(enc) {
			t.Fatalf("consumed %d, want %d", n, len(enc))
		}
		if dec.(StringValue) != StringValue(s) {
			t.Fatalf("roundtrip mismatch: %q != %q", dec, s)
		}
	})
}
