package message

import "time"

// FollowersOnlyMode is the three-way state of a channel's followers-only
// restriction: entirely disabled, open to all followers, or limited to
// followers of at least FollowersOnlyMinutes standing.
type FollowersOnlyMode int

const (
	FollowersOnlyDisabled FollowersOnlyMode = iota
	FollowersOnlyAll
	FollowersOnlyLimited
)

// RoomState reports a channel's chat settings. Twitch sends a full
// snapshot on join and partial updates (only the changed fields set)
// afterwards; fields left nil were not present in this particular message.
type RoomState struct {
	SourceMsg            *Message
	ChannelLogin         string
	ChannelID            string
	EmoteOnly            *bool
	FollowersOnly        *FollowersOnlyMode
	FollowersOnlyMinutes int
	R9K                  *bool
	SlowMode             *time.Duration
	SubscribersOnly      *bool
}

func (r *RoomState) Source() *Message { return r.SourceMsg }

func ParseRoomState(m *Message) (*RoomState, error) {
	if m.Command != "ROOMSTATE" {
		return nil, &ErrMismatchedCommand{Variant: "RoomState", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	channelID, err := m.RequireNonemptyTag("room-id")
	if err != nil {
		return nil, err
	}

	emoteOnly, err := m.OptionalBool("emote-only")
	if err != nil {
		return nil, err
	}
	r9k, err := m.OptionalBool("r9k")
	if err != nil {
		return nil, err
	}
	subscribersOnly, err := m.OptionalBool("subs-only")
	if err != nil {
		return nil, err
	}

	var slowMode *time.Duration
	if secs, err := m.OptionalInt("slow"); err != nil {
		return nil, err
	} else if secs != nil {
		d := time.Duration(*secs) * time.Second
		slowMode = &d
	}

	var followersOnly *FollowersOnlyMode
	followersOnlyMinutes := 0
	if n, err := m.OptionalInt("followers-only"); err != nil {
		return nil, err
	} else if n != nil {
		var mode FollowersOnlyMode
		switch {
		case *n < 0:
			mode = FollowersOnlyDisabled
		case *n == 0:
			mode = FollowersOnlyAll
		default:
			mode = FollowersOnlyLimited
			followersOnlyMinutes = int(*n)
		}
		followersOnly = &mode
	}

	return &RoomState{
		SourceMsg:            m,
		ChannelLogin:         channel,
		ChannelID:            channelID,
		EmoteOnly:            emoteOnly,
		FollowersOnly:        followersOnly,
		FollowersOnlyMinutes: followersOnlyMinutes,
		R9K:                  r9k,
		SlowMode:             slowMode,
		SubscribersOnly:      subscribersOnly,
	}, nil
}
