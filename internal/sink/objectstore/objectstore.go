// Package objectstore publishes block records as S3 objects and announces
// each object on an SQS queue.
package objectstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"blockScope/internal/model"
)

// ErrMissingCbor is returned for block records crawled without their cbor.
var ErrMissingCbor = errors.New("block record without cbor; enable include-block-cbor")

// Naming selects how object keys are built from a block record.
type Naming uint8

const (
	NamingHash Naming = iota
	NamingSlotHash
	NamingBlockHash
	NamingBlockNumber
	NamingEpochHash
	NamingEpochSlotHash
	NamingEpochBlockHash
)

var namings = map[string]Naming{
	"hash":           NamingHash,
	"slothash":       NamingSlotHash,
	"blockhash":      NamingBlockHash,
	"blocknumber":    NamingBlockNumber,
	"epochhash":      NamingEpochHash,
	"epochslothash":  NamingEpochSlotHash,
	"epochblockhash": NamingEpochBlockHash,
}

// ParseNaming accepts policy names such as "SlotHash" or "slot_hash".
// An empty name selects NamingHash.
func ParseNaming(name string) (Naming, error) {
	if name == "" {
		return NamingHash, nil
	}
	n, ok := namings[normalize(name)]
	if !ok {
		return 0, fmt.Errorf("unknown s3 naming policy: %s", name)
	}
	return n, nil
}

// ContentType selects the object body encoding.
type ContentType uint8

const (
	ContentCbor ContentType = iota
	ContentCborHex
	ContentJSON
)

// ParseContentType accepts "cbor", "cbor_hex" or "json". An empty name
// selects ContentCbor.
func ParseContentType(name string) (ContentType, error) {
	switch normalize(name) {
	case "", "cbor":
		return ContentCbor, nil
	case "cborhex":
		return ContentCborHex, nil
	case "json":
		return ContentJSON, nil
	}
	return 0, fmt.Errorf("unknown s3 content type: %s", name)
}

// MIME returns the HTTP content type of the encoding.
func (c ContentType) MIME() string {
	switch c {
	case ContentCborHex:
		return "text/plain"
	case ContentJSON:
		return "application/json"
	}
	return "application/cbor"
}

func normalize(name string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(name))
}

// Config configures the sink.
type Config struct {
	Bucket     string
	Prefix     string
	Region     string
	Endpoint   string
	Naming     Naming
	Content    ContentType
	QueueURL   string
	FIFO       bool
	GroupID    string
	MaxRetries int
}

// ObjectPutter is the subset of the S3 client used by the sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MessageSender is the subset of the SQS client used by the sink.
type MessageSender interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Sink publishes Block events; every other event kind is ignored.
type Sink struct {
	cfg    Config
	s3     ObjectPutter
	sqs    MessageSender
	logger *zap.Logger
}

// New builds AWS clients from the default credential chain.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("sqs queue url is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.MaxRetries > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClients(cfg, s3Client, sqs.NewFromConfig(awsCfg), logger), nil
}

func NewWithClients(cfg Config, objects ObjectPutter, queue MessageSender, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "block-mapper"
	}
	return &Sink{cfg: cfg, s3: objects, sqs: queue, logger: logger}
}

func (s *Sink) Accept(ctx context.Context, ev model.Event) error {
	rec, ok := ev.Data.(model.BlockRecord)
	if !ok {
		return nil
	}
	key := ObjectKey(s.cfg.Prefix, s.cfg.Naming, rec)
	if err := s.putObject(ctx, key, rec); err != nil {
		return fmt.Errorf("put block %s: %w", rec.Hash, err)
	}
	if err := s.sendMessage(ctx, key, rec); err != nil {
		return fmt.Errorf("announce block %s: %w", rec.Hash, err)
	}
	s.logger.Debug("block published", zap.String("key", key), zap.Uint64("slot", rec.Slot))
	return nil
}

// Replayable is always true: object keys derive from the block and
// republishing overwrites the same object.
func (s *Sink) Replayable([]model.Event) bool { return true }

func (s *Sink) Close() error { return nil }

func (s *Sink) putObject(ctx context.Context, key string, rec model.BlockRecord) error {
	body, err := encodeBlock(s.cfg.Content, rec)
	if err != nil {
		return err
	}
	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(s.cfg.Content.MIME()),
		Metadata: map[string]string{
			"era":           rec.Era.String(),
			"issuer_vkey":   rec.IssuerVkey,
			"tx_count":      strconv.Itoa(rec.TxCount),
			"slot":          strconv.FormatUint(rec.Slot, 10),
			"hash":          rec.Hash,
			"number":        strconv.FormatUint(rec.Number, 10),
			"previous_hash": rec.PreviousHash,
		},
	})
	return err
}

// message is the queue notification for one stored block.
type message struct {
	S3Key        string `json:"s3_key"`
	BlockHash    string `json:"block_hash"`
	PreviousHash string `json:"previous_hash"`
	BlockNumber  uint64 `json:"block_number"`
	Slot         uint64 `json:"slot"`
	Tip          *int64 `json:"tip"`
}

func (s *Sink) sendMessage(ctx context.Context, key string, rec model.BlockRecord) error {
	body, err := json.Marshal(message{
		S3Key:        key,
		BlockHash:    rec.Hash,
		PreviousHash: rec.PreviousHash,
		BlockNumber:  rec.Number,
		Slot:         rec.Slot,
	})
	if err != nil {
		return err
	}
	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.cfg.QueueURL),
		MessageBody: aws.String(string(body)),
	}
	if s.cfg.FIFO {
		in.MessageGroupId = aws.String(s.cfg.GroupID)
		in.MessageDeduplicationId = aws.String(key)
	}
	_, err = s.sqs.SendMessage(ctx, in)
	return err
}

// ObjectKey builds the object key of rec under prefix. A missing epoch
// renders as 0.
func ObjectKey(prefix string, naming Naming, rec model.BlockRecord) string {
	var epoch uint64
	if rec.Epoch != nil {
		epoch = *rec.Epoch
	}
	switch naming {
	case NamingSlotHash:
		return fmt.Sprintf("%s%d.%s", prefix, rec.Slot, rec.Hash)
	case NamingBlockHash:
		return fmt.Sprintf("%s%d.%s", prefix, rec.Number, rec.Hash)
	case NamingBlockNumber:
		return fmt.Sprintf("%s%d", prefix, rec.Number)
	case NamingEpochHash:
		return fmt.Sprintf("%s%d.%s", prefix, epoch, rec.Hash)
	case NamingEpochSlotHash:
		return fmt.Sprintf("%s%d.%d.%s", prefix, epoch, rec.Slot, rec.Hash)
	case NamingEpochBlockHash:
		return fmt.Sprintf("%s%d.%d.%s", prefix, epoch, rec.Number, rec.Hash)
	}
	return prefix + rec.Hash
}

func encodeBlock(content ContentType, rec model.BlockRecord) ([]byte, error) {
	if rec.CborHex == nil {
		return nil, ErrMissingCbor
	}
	switch content {
	case ContentCborHex:
		return []byte(*rec.CborHex), nil
	case ContentJSON:
		return json.Marshal(rec)
	}
	raw, err := hex.DecodeString(*rec.CborHex)
	if err != nil {
		return nil, fmt.Errorf("decode block cbor hex: %w", err)
	}
	return raw, nil
}
