package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSink_RecordsMessages(t *testing.T) {
	m := &MockSink{}

	require.NoError(t, m.Publish("t1", "k1", []byte("v1")))
	require.NoError(t, m.Publish("t2", "k2", []byte("v2")))

	msgs := m.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "t1", msgs[0].Topic)
	assert.Equal(t, "k2", msgs[1].Key)

	m.Reset()
	assert.Empty(t, m.Snapshot())
}

func TestMockSink_PublishErr(t *testing.T) {
	m := &MockSink{PublishErr: errors.New("down")}

	assert.Error(t, m.Publish("t", "k", nil))
	assert.Empty(t, m.Snapshot())
}
