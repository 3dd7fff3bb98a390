package message

import (
	"encoding/binary"

	"github.com/aldrinbus/bus/internal/buserr"
	"github.com/aldrinbus/bus/wire/ids"
	"github.com/google/uuid"
)

// fieldWriter accumulates a message's fixed trailer fields (everything
// after the embedded value, or the whole body for value-less kinds). These
// fields are plain fixed-width or length-prefixed encodings, distinct from
// the self-describing value tree: a message's shape is fixed by its kind,
// so there is nothing to self-describe.
type fieldWriter struct {
	buf []byte
}

func (w *fieldWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *fieldWriter) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *fieldWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *fieldWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *fieldWriter) uuid(u uuid.UUID) {
	w.buf = append(w.buf, u[:]...)
}

func (w *fieldWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *fieldWriter) bytes() []byte { return w.buf }

// fieldReader is the mirror-image cursor over a decoded fields slice.
type fieldReader struct {
	buf []byte
	off int
}

func newFieldReader(buf []byte) *fieldReader { return &fieldReader{buf: buf} }

func (r *fieldReader) need(n int) error {
	if len(r.buf)-r.off < n {
		return buserr.ErrUnexpectedEoi
	}
	return nil
}

func (r *fieldReader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *fieldReader) boolean() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *fieldReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *fieldReader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *fieldReader) uuid() (uuid.UUID, error) {
	if err := r.need(16); err != nil {
		return uuid.UUID{}, err
	}
	var u uuid.UUID
	copy(u[:], r.buf[r.off:r.off+16])
	r.off += 16
	return u, nil
}

func (r *fieldReader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *fieldReader) done() error {
	if r.off != len(r.buf) {
		return buserr.ErrTrailingData
	}
	return nil
}

// objectId / serviceId helpers, since nearly every message carries one.

func (w *fieldWriter) objectId(id ids.ObjectId) {
	w.uuid(uuid.UUID(id.UUID))
	w.uuid(uuid.UUID(id.Cookie))
}

func (r *fieldReader) objectId() (ids.ObjectId, error) {
	name, err := r.uuid()
	if err != nil {
		return ids.ObjectId{}, err
	}
	cookie, err := r.uuid()
	if err != nil {
		return ids.ObjectId{}, err
	}
	return ids.ObjectId{UUID: ids.ObjectUUID(name), Cookie: ids.ObjectCookie(cookie)}, nil
}

func (w *fieldWriter) serviceId(id ids.ServiceId) {
	w.objectId(id.Object)
	w.uuid(uuid.UUID(id.UUID))
	w.uuid(uuid.UUID(id.Cookie))
}

func (r *fieldReader) serviceId() (ids.ServiceId, error) {
	obj, err := r.objectId()
	if err != nil {
		return ids.ServiceId{}, err
	}
	name, err := r.uuid()
	if err != nil {
		return ids.ServiceId{}, err
	}
	cookie, err := r.uuid()
	if err != nil {
		return ids.ServiceId{}, err
	}
	return ids.ServiceId{Object: obj, UUID: ids.ServiceUUID(name), Cookie: ids.ServiceCookie(cookie)}, nil
}
