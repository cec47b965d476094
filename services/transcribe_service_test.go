package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"clipforge/models"
)

func TestWriteSRT(t *testing.T) {
	segments := []models.Segment{
		{Start: 0.0, End: 2.5, Text: "Hello there"},
		{Start: 2.5, End: 61.25, Text: "and welcome back"},
		{Start: 3661.0, End: 3662.9996, Text: "the end"},
	}
	srtPath := filepath.Join(t.TempDir(), "subs.srt")

	require.NoError(t, WriteSRT(segments, srtPath))

	content, err := os.ReadFile(srtPath)
	require.NoError(t, err)

	expected := "1\n00:00:00,000 --> 00:00:02,500\nHello there\n\n" +
		"2\n00:00:02,500 --> 00:01:01,250\nand welcome back\n\n" +
		"3\n01:01:01,000 --> 01:01:02,999\nthe end\n\n"
	require.Equal(t, expected, string(content))
}

func TestWriteSRTEmptySegments(t *testing.T) {
	srtPath := filepath.Join(t.TempDir(), "subs.srt")

	require.NoError(t, WriteSRT(nil, srtPath))

	content, err := os.ReadFile(srtPath)
	require.NoError(t, err)
	require.Empty(t, content)
}
