package domain

// ChannelID is the canonical identifier of the conversation between two
// participants. It is derived, never stored on its own.
type ChannelID string

const channelSeparator = "--"

// NewChannelID derives the canonical channel for an unordered pair of
// participant ids. NewChannelID(a, b) == NewChannelID(b, a) for all a, b.
func NewChannelID(a, b string) ChannelID {
	if b < a {
		a, b = b, a
	}
	return ChannelID(a + channelSeparator + b)
}

func (c ChannelID) String() string {
	return string(c)
}
