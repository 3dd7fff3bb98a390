package message

import "testing"

// FuzzDecodeFrameNeverPanics feeds arbitrary bytes through the envelope and
// full message decoders; malformed input must fail cleanly, never panic.
func FuzzDecodeFrameNeverPanics(f *testing.F) {
	seed, _ := EncodeFrame(Connect, []byte{0, 1}, []byte{2, 3, 4, 5})
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{1, 0, 0, 0, byte(Sync)})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _, _ = DecodeFrame(data)
		_, _, _ = Decode(data)

		p := NewPacketizer(0)
		p.Feed(data)
		for {
			_, ok, err := p.Next()
			if !ok || err != nil {
				break
			}
		}
	})
}
