package objectstore

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockScope/internal/model"
	"blockScope/internal/sink"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

func block() model.BlockRecord {
	return model.BlockRecord{
		Era:          model.EraBabbage,
		Epoch:        model.Ptr(uint64(400)),
		Slot:         1000,
		Hash:         "aa",
		Number:       77,
		PreviousHash: "99",
		TxCount:      3,
		IssuerVkey:   "ee",
		CborHex:      model.Ptr("820102"),
	}
}

func TestObjectKey(t *testing.T) {
	rec := block()
	tests := map[Naming]string{
		NamingHash:           "p/aa",
		NamingSlotHash:       "p/1000.aa",
		NamingBlockHash:      "p/77.aa",
		NamingBlockNumber:    "p/77",
		NamingEpochHash:      "p/400.aa",
		NamingEpochSlotHash:  "p/400.1000.aa",
		NamingEpochBlockHash: "p/400.77.aa",
	}
	for naming, want := range tests {
		assert.Equal(t, want, ObjectKey("p/", naming, rec))
	}

	rec.Epoch = nil
	assert.Equal(t, "0.aa", ObjectKey("", NamingEpochHash, rec))
}

func TestParsePolicies(t *testing.T) {
	n, err := ParseNaming("EpochSlotHash")
	require.NoError(t, err)
	assert.Equal(t, NamingEpochSlotHash, n)
	n, err = ParseNaming("slot_hash")
	require.NoError(t, err)
	assert.Equal(t, NamingSlotHash, n)
	n, err = ParseNaming("")
	require.NoError(t, err)
	assert.Equal(t, NamingHash, n)
	_, err = ParseNaming("bogus")
	assert.Error(t, err)

	c, err := ParseContentType("cbor_hex")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", c.MIME())
	c, err = ParseContentType("")
	require.NoError(t, err)
	assert.Equal(t, "application/cbor", c.MIME())
	_, err = ParseContentType("xml")
	assert.Error(t, err)
}

func TestAcceptPublishesBlock(t *testing.T) {
	objects, queue := &fakeS3{}, &fakeSQS{}
	s := NewWithClients(Config{Bucket: "b", Prefix: "blocks/", Naming: NamingSlotHash, QueueURL: "q", FIFO: true}, objects, queue, nil)

	require.NoError(t, s.Accept(context.Background(), model.Event{Data: block()}))
	require.NoError(t, s.Accept(context.Background(), model.Event{Data: model.TxInputRecord{}}))

	require.Len(t, objects.inputs, 1)
	put := objects.inputs[0]
	assert.Equal(t, "blocks/1000.aa", aws.ToString(put.Key))
	assert.Equal(t, "application/cbor", aws.ToString(put.ContentType))
	assert.Equal(t, "Babbage", put.Metadata["era"])
	assert.Equal(t, "3", put.Metadata["tx_count"])
	assert.Equal(t, []byte{0x82, 0x01, 0x02}, objects.bodies[0])

	require.Len(t, queue.inputs, 1)
	msg := queue.inputs[0]
	assert.Equal(t, "block-mapper", aws.ToString(msg.MessageGroupId))
	assert.Equal(t, "blocks/1000.aa", aws.ToString(msg.MessageDeduplicationId))
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(msg.MessageBody)), &body))
	assert.Equal(t, "blocks/1000.aa", body["s3_key"])
	assert.Equal(t, "99", body["previous_hash"])
	assert.Equal(t, float64(77), body["block_number"])
	assert.Nil(t, body["tip"])
}

func TestAcceptContentTypes(t *testing.T) {
	objects := &fakeS3{}
	s := NewWithClients(Config{Content: ContentJSON}, objects, &fakeSQS{}, nil)
	require.NoError(t, s.Accept(context.Background(), model.Event{Data: block()}))
	assert.Contains(t, string(objects.bodies[0]), `"hash":"aa"`)

	s = NewWithClients(Config{Content: ContentCborHex}, objects, &fakeSQS{}, nil)
	require.NoError(t, s.Accept(context.Background(), model.Event{Data: block()}))
	assert.Equal(t, "820102", string(objects.bodies[1]))
}

func TestAcceptRequiresCbor(t *testing.T) {
	queue := &fakeSQS{}
	s := NewWithClients(Config{}, &fakeS3{}, queue, nil)
	rec := block()
	rec.CborHex = nil
	err := s.Accept(context.Background(), model.Event{Data: rec})
	assert.ErrorIs(t, err, ErrMissingCbor)
	assert.Empty(t, queue.inputs)
}

func TestRepublishingIsReplayable(t *testing.T) {
	objects := &fakeS3{}
	s := NewWithClients(Config{Bucket: "b"}, objects, &fakeSQS{}, nil)
	events := []model.Event{{Data: block()}}
	assert.True(t, sink.Replayable(s, events))

	require.NoError(t, s.Accept(context.Background(), events[0]))
	require.NoError(t, s.Accept(context.Background(), events[0]))
	require.Len(t, objects.inputs, 2)
	assert.Equal(t, aws.ToString(objects.inputs[0].Key), aws.ToString(objects.inputs[1].Key))
}
