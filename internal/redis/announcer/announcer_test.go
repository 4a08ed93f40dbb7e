package announcer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct{ got []string }

func (r *recorder) Announce(text string) { r.got = append(r.got, text) }

func TestHandle(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    []string
	}{
		{name: "plain text", payload: "server restarts at noon", want: []string{"server restarts at noon"}},
		{name: "json", payload: `{"text":" maintenance "}`, want: []string{"maintenance"}},
		{name: "json without text", payload: `{"other":1}`, want: nil},
		{name: "blank", payload: "   ", want: nil},
		{name: "broken json is text", payload: `{oops`, want: []string{"{oops"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &recorder{}
			handle(tc.payload, r)
			require.Equal(t, tc.want, r.got)
		})
	}
}

func TestHandle_TruncatesLongAnnouncements(t *testing.T) {
	r := &recorder{}
	handle(strings.Repeat("x", maxAnnouncementLen+50), r)
	require.Len(t, r.got, 1)
	require.Len(t, r.got[0], maxAnnouncementLen)
}

func TestChannel(t *testing.T) {
	require.Equal(t, "chat:announce", Channel("chat"))
}
