package notifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuildMessageTwoCompanions(t *testing.T) {
	msg := BuildMessage([]string{"Ahmad", "Bilal"}, 3, nil, nil)
	require.Equal(t, "Teman muraja'ah kamu hari ini: Ahmad dan Bilal. Silakan bergabung di Ruang 3.", msg)
}

func TestBuildMessageSingleCompanion(t *testing.T) {
	msg := BuildMessage([]string{"Ahmad"}, 1, nil, nil)
	require.Equal(t, "Teman muraja'ah kamu hari ini: Ahmad. Silakan bergabung di Ruang 1.", msg)
}

func TestBuildMessageThreeCompanions(t *testing.T) {
	msg := BuildMessage([]string{"Ahmad", "Bilal", "Chairul"}, 2, nil, nil)
	require.Contains(t, msg, "Ahmad, Bilal dan Chairul")
}

func TestBuildMessageNoCompanions(t *testing.T) {
	msg := BuildMessage(nil, 4, nil, nil)
	require.Equal(t, "Hari ini kamu muraja'ah mandiri di Ruang 4.", msg)
}

func TestBuildMessageWithLinkAndPassword(t *testing.T) {
	msg := BuildMessage([]string{"Ahmad"}, 1, strPtr("https://meet.example.com/abc"), strPtr("1234"))
	require.Contains(t, msg, " Link: https://meet.example.com/abc")
	require.Contains(t, msg, " Password: 1234")
}

func TestBuildMessageLinkOnly(t *testing.T) {
	msg := BuildMessage([]string{"Ahmad"}, 1, strPtr("https://meet.example.com/abc"), nil)
	require.Contains(t, msg, "Link:")
	require.NotContains(t, msg, "Password:")
}

func TestBuildMessageEmptySnapshotStringsOmitted(t *testing.T) {
	msg := BuildMessage([]string{"Ahmad"}, 1, strPtr(""), strPtr(""))
	require.NotContains(t, msg, "Link:")
	require.NotContains(t, msg, "Password:")
}
