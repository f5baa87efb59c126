package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStreamName(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"robot1.markers", "robot1_markers"},
		{"a.b.c", "a_b_c"},
		{"no-dots", "no-dots"},
		{"", ""},
		{"grüne.marker", "grüne_marker"},
		{"ロボット.markers", "ロボット_markers"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeStreamName(tc.topic), "topic %q", tc.topic)
	}
}
