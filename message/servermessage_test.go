package message

import "testing"

func TestParseServerMessageDispatch(t *testing.T) {
	m, err := Parse("@room-id=1 :tmi.twitch.tv ROOMSTATE #chan")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sm, err := ParseServerMessage(m)
	if err != nil {
		t.Fatalf("ParseServerMessage error: %v", err)
	}
	if _, ok := sm.(*RoomState); !ok {
		t.Fatalf("got %T, want *RoomState", sm)
	}
}

func TestParseServerMessageUnknownIsGeneric(t *testing.T) {
	m, err := Parse("875 justinfan1 :some numeric")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sm, err := ParseServerMessage(m)
	if err != nil {
		t.Fatalf("ParseServerMessage error: %v", err)
	}
	if _, ok := sm.(*Generic); !ok {
		t.Fatalf("got %T, want *Generic", sm)
	}
}

func TestClearChatVariants(t *testing.T) {
	cases := []struct {
		line   string
		action ClearChatAction
	}{
		{"@room-id=1 :tmi.twitch.tv CLEARCHAT #chan", ChatCleared},
		{"@room-id=1;target-user-id=2 :tmi.twitch.tv CLEARCHAT #chan :baduser", UserBanned},
		{"@ban-duration=600;room-id=1;target-user-id=2 :tmi.twitch.tv CLEARCHAT #chan :baduser", UserTimedOut},
	}
	for _, c := range cases {
		m, err := Parse(c.line)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", c.line, err)
		}
		cc, err := ParseClearChat(m)
		if err != nil {
			t.Fatalf("ParseClearChat(%q) error: %v", c.line, err)
		}
		if cc.Action != c.action {
			t.Errorf("Action = %v, want %v for %q", cc.Action, c.action, c.line)
		}
	}
}

func TestRoomStateFollowersOnlyModes(t *testing.T) {
	cases := []struct {
		n       string
		mode    FollowersOnlyMode
		minutes int
	}{
		{"-1", FollowersOnlyDisabled, 0},
		{"0", FollowersOnlyAll, 0},
		{"10", FollowersOnlyLimited, 10},
	}
	for _, c := range cases {
		line := "@followers-only=" + c.n + ";room-id=1 :tmi.twitch.tv ROOMSTATE #chan"
		m, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		rs, err := ParseRoomState(m)
		if err != nil {
			t.Fatalf("ParseRoomState error: %v", err)
		}
		if rs.FollowersOnly == nil || *rs.FollowersOnly != c.mode {
			t.Errorf("FollowersOnly = %v, want %v", rs.FollowersOnly, c.mode)
		}
		if rs.FollowersOnlyMinutes != c.minutes {
			t.Errorf("FollowersOnlyMinutes = %d, want %d", rs.FollowersOnlyMinutes, c.minutes)
		}
	}
}

func TestRoomStatePartialUpdateLeavesOtherFieldsNil(t *testing.T) {
	m, err := Parse("@room-id=1;slow=5 :tmi.twitch.tv ROOMSTATE #chan")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	rs, err := ParseRoomState(m)
	if err != nil {
		t.Fatalf("ParseRoomState error: %v", err)
	}
	if rs.EmoteOnly != nil || rs.FollowersOnly != nil || rs.R9K != nil || rs.SubscribersOnly != nil {
		t.Errorf("expected only SlowMode set, got %+v", rs)
	}
	if rs.SlowMode == nil || *rs.SlowMode != 5*1e9 {
		t.Errorf("SlowMode = %v, want 5s", rs.SlowMode)
	}
}

func TestNoticeChannelScopedMsgID(t *testing.T) {
	m, err := Parse("@msg-id=msg_channel_suspended :tmi.twitch.tv NOTICE #chan :This channel does not exist or has been suspended.")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	n, err := ParseNotice(m)
	if err != nil {
		t.Fatalf("ParseNotice error: %v", err)
	}
	if n.MessageID != "msg_channel_suspended" {
		t.Errorf("MessageID = %q, want msg_channel_suspended", n.MessageID)
	}
	if n.ChannelLogin != "chan" {
		t.Errorf("ChannelLogin = %q, want chan", n.ChannelLogin)
	}
}
