package cache

import (
	"testing"

	"github.com/hatlonely/dbx/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgPackSerializer(t *testing.T) {
	serializer := NewMsgPackSerializer[*metadata.Snapshot]()

	snapshot := testSnapshot()
	data, err := serializer.Serialize(snapshot)
	require.NoError(t, err)

	loaded, err := serializer.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Fingerprint, loaded.Fingerprint)
	assert.Equal(t, snapshot.Table("users").Columns, loaded.Table("users").Columns)

	_, err = serializer.Deserialize([]byte("not msgpack"))
	assert.Error(t, err)
}

func TestJSONSerializer(t *testing.T) {
	serializer := NewJSONSerializer[*metadata.Snapshot]()

	snapshot := testSnapshot()
	data, err := serializer.Serialize(snapshot)
	require.NoError(t, err)

	loaded, err := serializer.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Fingerprint, loaded.Fingerprint)

	_, err = serializer.Deserialize([]byte("{"))
	assert.Error(t, err)
}

func TestNewSerializer(t *testing.T) {
	for _, name := range []string{"", "msgpack", "json"} {
		serializer, err := newSerializer[*metadata.Snapshot](name)
		require.NoError(t, err)
		require.NotNil(t, serializer)
	}

	_, err := newSerializer[*metadata.Snapshot]("bson")
	assert.Error(t, err)
}
