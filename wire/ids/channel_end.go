package ids

// ChannelEnd identifies which side of a channel a claim, close, or item
// operation refers to: the sending half or the receiving half.
type ChannelEnd uint8

const (
	Sender ChannelEnd = iota
	Receiver
)

// Other returns the opposite end.
func (e ChannelEnd) Other() ChannelEnd {
	if e == Sender {
		return Receiver
	}
	return Sender
}

func (e ChannelEnd) String() string {
	if e == Sender {
		return "sender"
	}
	return "receiver"
}
