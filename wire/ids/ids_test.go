package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilSentinels(t *testing.T) {
	assert.True(t, NilObjectId.IsNil())
	assert.True(t, NilServiceId.IsNil())

	obj := ObjectId{UUID: NewObjectUUID(), Cookie: NewObjectCookie()}
	assert.False(t, obj.IsNil())
}

func TestCookiesAreFreshAndDistinct(t *testing.T) {
	a := NewObjectCookie()
	b := NewObjectCookie()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsNil())
}

func TestServiceIdNesting(t *testing.T) {
	obj := ObjectId{UUID: NewObjectUUID(), Cookie: NewObjectCookie()}
	svc := ServiceId{Object: obj, UUID: NewServiceUUID(), Cookie: NewServiceCookie()}
	assert.False(t, svc.IsNil())
	assert.Equal(t, obj, svc.Object)
}

func TestChannelEndOther(t *testing.T) {
	assert.Equal(t, Receiver, Sender.Other())
	assert.Equal(t, Sender, Receiver.Other())
	assert.Equal(t, "sender", Sender.String())
}
