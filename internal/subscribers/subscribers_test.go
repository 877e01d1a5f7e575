package subscribers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashEmail(t *testing.T) {
	// sha256("") is a well known value
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashEmail(""))
	require.Len(t, HashEmail("student@gannon.edu"), 64)
	require.NotEqual(t, HashEmail("Student@gannon.edu"), HashEmail("student@gannon.edu"))
}

func TestUnsubscribeURL(t *testing.T) {
	hash := HashEmail("student@gannon.edu")
	require.Equal(
		t,
		"https://first-scoop.vercel.app/unsubscribe?hash="+hash,
		UnsubscribeURL("https://first-scoop.vercel.app/unsubscribe", "student@gannon.edu"),
	)
	require.Equal(
		t,
		"https://example.com/u?list=daily&hash="+hash,
		UnsubscribeURL("https://example.com/u?list=daily", "student@gannon.edu"),
	)
}

func TestParseEmails(t *testing.T) {
	source := ParseEmails(" a@x.com, ,b@x.com,")
	list, err := source.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Subscriber{{Email: "a@x.com"}, {Email: "b@x.com"}}, list)
	require.Empty(t, ParseEmails(""))
}
