package logsiftv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())

	ev := &TailEvent{
		Type:   EventRecord,
		Record: &types.LogRecord{Folder: "svc", File: "app.log", LineNumber: 3, Content: "x", Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		Time:   time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC),
	}
	data, err := c.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lineNumber":3`)

	var got TailEvent
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, ev.Record.Content, got.Record.Content)
	assert.True(t, ev.Time.Equal(got.Time))
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, "/logsift.v1.LogSift/Extract", FullMethod(MethodExtract))

	var names []string
	for _, m := range ServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.ElementsMatch(t, []string{
		MethodExtract, MethodAnalyze, MethodListFolders,
		MethodExtractLocal, MethodGetStatus, MethodShutdown,
	}, names)

	require.Len(t, ServiceDesc.Streams, 1)
	assert.Equal(t, MethodTail, ServiceDesc.Streams[0].StreamName)
	assert.True(t, ServiceDesc.Streams[0].ServerStreams)
	assert.False(t, ServiceDesc.Streams[0].ClientStreams)
}
