package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodecV2(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecCarriesOptionalsAndBytes(t *testing.T) {
	c := jsonCodec{}

	in := &GenerateReportsRequest{
		Instructors: &Upload{Filename: "inst.csv", Content: []byte("a,b\n1,2\n")},
		Year:        wrapperspb.Int32(2024),
	}
	data, err := c.Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"module"`)

	var out GenerateReportsRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, "inst.csv", out.GetInstructors().GetFilename())
	assert.Equal(t, []byte("a,b\n1,2\n"), out.GetInstructors().GetContent())
	assert.Equal(t, int32(2024), out.GetYear().GetValue())
	assert.Nil(t, out.GetModule())
	assert.Nil(t, out.GetModules().GetContent())
}

func TestCodecTimestamp(t *testing.T) {
	c := jsonCodec{}
	at := time.Date(2025, 10, 18, 9, 30, 0, 500, time.UTC)

	data, err := c.Marshal(&ListRunsResponse{Runs: []*Run{{RunId: "r1", CreatedAt: timestamppb.New(at)}}})
	require.NoError(t, err)

	var out ListRunsResponse
	require.NoError(t, c.Unmarshal(data, &out))
	require.Len(t, out.Runs, 1)
	assert.True(t, at.Equal(out.Runs[0].CreatedAt.AsTime()))
}
