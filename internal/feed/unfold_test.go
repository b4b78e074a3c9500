package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnfoldLinesJoinsContinuations(t *testing.T) {
	require.Equal(t, []string{"A:1B", "C:2"}, UnfoldLines("A:1\r\n B\r\nC:2"))
}

func TestUnfoldLinesLFOnly(t *testing.T) {
	require.Equal(t, []string{"A:1B", "C:2"}, UnfoldLines("A:1\n B\nC:2"))
}

func TestUnfoldLinesTabContinuation(t *testing.T) {
	require.Equal(t, []string{"SUMMARY:helloworld"}, UnfoldLines("SUMMARY:hello\n\tworld"))
}

func TestUnfoldLinesStripsOnlyFirstChar(t *testing.T) {
	// The second character of the continuation belongs to the content.
	require.Equal(t, []string{"A:x  y"}, UnfoldLines("A:x\n   y"))
}

func TestUnfoldLinesOrphanContinuationDropped(t *testing.T) {
	require.Equal(t, []string{"B:2"}, UnfoldLines(" orphan\nB:2"))
}

func TestUnfoldLinesTrimsTrailingWhitespace(t *testing.T) {
	require.Equal(t, []string{"A:1"}, UnfoldLines("A:1  \t\n"))
}

func TestUnfoldLinesEmpty(t *testing.T) {
	require.Empty(t, UnfoldLines(""))
	require.Empty(t, UnfoldLines("\r\n\r\n"))
}
