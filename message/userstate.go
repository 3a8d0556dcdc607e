package message

import "strings"

// UserState reports this client's own badges/state in a channel; sent on
// join and whenever that state changes.
type UserState struct {
	SourceMsg    *Message
	ChannelLogin string
	DisplayName  string
	Badges       []Badge
	BadgeInfo    []Badge
	Color        string
	EmoteSets    []string
	IsModerator  bool
}

func (u *UserState) Source() *Message { return u.SourceMsg }

func ParseUserState(m *Message) (*UserState, error) {
	if m.Command != "USERSTATE" {
		return nil, &ErrMismatchedCommand{Variant: "UserState", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}

	isMod, err := m.OptionalBool("mod")
	if err != nil {
		return nil, err
	}

	return &UserState{
		SourceMsg:    m,
		ChannelLogin: channel,
		DisplayName:  m.OptionalNonemptyTag("display-name"),
		Badges:       parseBadges(m.OptionalNonemptyTag("badges")),
		BadgeInfo:    parseBadges(m.OptionalNonemptyTag("badge-info")),
		Color:        m.OptionalNonemptyTag("color"),
		EmoteSets:    splitNonEmpty(m.OptionalNonemptyTag("emote-sets"), ","),
		IsModerator:  isMod != nil && *isMod,
	}, nil
}

// GlobalUserState is sent once right after authentication, reporting this
// client's account-wide (not channel-scoped) state.
type GlobalUserState struct {
	SourceMsg   *Message
	UserID      string
	DisplayName string
	Badges      []Badge
	BadgeInfo   []Badge
	Color       string
	EmoteSets   []string
}

func (g *GlobalUserState) Source() *Message { return g.SourceMsg }

func ParseGlobalUserState(m *Message) (*GlobalUserState, error) {
	if m.Command != "GLOBALUSERSTATE" {
		return nil, &ErrMismatchedCommand{Variant: "GlobalUserState", Command: m.Command}
	}
	userID, err := m.RequireNonemptyTag("user-id")
	if err != nil {
		return nil, err
	}
	return &GlobalUserState{
		SourceMsg:   m,
		UserID:      userID,
		DisplayName: m.OptionalNonemptyTag("display-name"),
		Badges:      parseBadges(m.OptionalNonemptyTag("badges")),
		BadgeInfo:   parseBadges(m.OptionalNonemptyTag("badge-info")),
		Color:       m.OptionalNonemptyTag("color"),
		EmoteSets:   splitNonEmpty(m.OptionalNonemptyTag("emote-sets"), ","),
	}, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
