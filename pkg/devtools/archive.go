package devtools

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/loom-dev/loom/internal/errors"
)

// ErrTraceNotFound is returned when a stored trace doesn't exist.
var ErrTraceNotFound = errors.Newf(errors.CategoryProtocol, "trace not found")

// Archive is the interface for trace storage backends.
// Implement this interface to use S3, GCS, or other storage.
type Archive interface {
	// Put stores a recorded trace under its ID.
	Put(ctx context.Context, t Trace) error

	// Get retrieves a stored trace by ID.
	Get(ctx context.Context, id string) (Trace, error)

	// List returns summaries of stored traces, newest first.
	List(ctx context.Context) ([]TraceInfo, error)

	// Cleanup removes traces older than maxAge.
	// Call this periodically or on startup.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}

// Trace is one recorded inspection session: encoded frames back to
// back, replayable with ReadFrame.
type Trace struct {
	// ID is the unique identifier for this trace.
	ID string

	// Started and Ended bound the recorded window.
	Started time.Time
	Ended   time.Time

	// Frames is the number of frames in Data.
	Frames int

	// Data is the recorded frame stream.
	Data []byte
}

// Replay decodes the recorded frames in order.
func (t Trace) Replay() ([]*Frame, error) {
	var frames []*Frame
	r := bytes.NewReader(t.Data)
	for {
		f, err := ReadFrame(r)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// TraceInfo summarizes a stored trace without loading its data.
type TraceInfo struct {
	ID     string    `json:"id"`
	Size   int64     `json:"size"`
	Stored time.Time `json:"stored"`
}

// NewTraceID returns a trace identifier that sorts by creation time.
func NewTraceID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return time.Now().UTC().Format("20060102T150405") + "-" + hex.EncodeToString(b)
}

var (
	_ Archive = (*MemoryArchive)(nil)
	_ Archive = (*S3Archive)(nil)
)

// =============================================================================
// Memory Archive
// =============================================================================

// MemoryArchive keeps traces in process memory. It is the default
// backend when no bucket is configured.
type MemoryArchive struct {
	mu     sync.RWMutex
	traces map[string]Trace
}

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{traces: make(map[string]Trace)}
}

// Put stores a trace in memory.
func (a *MemoryArchive) Put(ctx context.Context, t Trace) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.traces[t.ID] = t
	return nil
}

// Get retrieves a stored trace by ID.
func (a *MemoryArchive) Get(ctx context.Context, id string) (Trace, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.traces[id]
	if !ok {
		return Trace{}, ErrTraceNotFound
	}
	return t, nil
}

// List returns summaries of stored traces, newest first.
func (a *MemoryArchive) List(ctx context.Context) ([]TraceInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]TraceInfo, 0, len(a.traces))
	for _, t := range a.traces {
		out = append(out, TraceInfo{ID: t.ID, Size: int64(len(t.Data)), Stored: t.Ended})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stored.After(out[j].Stored) })
	return out, nil
}

// Cleanup removes traces that ended before the age cutoff.
func (a *MemoryArchive) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, t := range a.traces {
		if t.Ended.Before(cutoff) {
			delete(a.traces, id)
		}
	}
	return nil
}

// =============================================================================
// S3 Archive
// =============================================================================

// S3Client is the subset of the S3 API the archive uses.
// *s3.Client satisfies it; tests substitute a fake.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner generates presigned GET links for stored traces.
// *s3.PresignClient satisfies it.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Archive stores traces in an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//	archive := devtools.NewS3Archive(client, "my-bucket", "traces/",
//	    devtools.WithPresigner(s3.NewPresignClient(client)))
type S3Archive struct {
	client    S3Client
	bucket    string
	prefix    string
	presigner Presigner
	urlExpiry time.Duration
}

// S3Option configures an S3Archive.
type S3Option func(*S3Archive)

// WithPresigner enables TraceURL. Pass s3.NewPresignClient(client).
func WithPresigner(p Presigner) S3Option {
	return func(a *S3Archive) { a.presigner = p }
}

// WithURLExpiry sets how long presigned trace links stay valid.
func WithURLExpiry(d time.Duration) S3Option {
	return func(a *S3Archive) { a.urlExpiry = d }
}

// NewS3Archive creates an archive backed by an S3 bucket.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for traces (e.g., "traces/")
func NewS3Archive(client S3Client, bucket, prefix string, opts ...S3Option) *S3Archive {
	a := &S3Archive{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		urlExpiry: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Put uploads a trace to S3, with its window recorded as object metadata.
func (a *S3Archive) Put(ctx context.Context, t Trace) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.prefix + t.ID),
		Body:        bytes.NewReader(t.Data),
		ContentType: aws.String("application/x-loom-trace"),
		Metadata: map[string]string{
			"trace-started": t.Started.UTC().Format(time.RFC3339Nano),
			"trace-ended":   t.Ended.UTC().Format(time.RFC3339Nano),
			"trace-frames":  strconv.Itoa(t.Frames),
		},
	})
	if err != nil {
		return errors.New("E051").
			WithDetail("put of trace %s failed", t.ID).Wrap(err)
	}
	return nil
}

// Get retrieves a trace from S3.
func (a *S3Archive) Get(ctx context.Context, id string) (Trace, error) {
	key := a.prefix + id

	head, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Trace{}, ErrTraceNotFound
	}

	obj, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Trace{}, ErrTraceNotFound
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return Trace{}, errors.New("E051").
			WithDetail("read of trace %s failed", id).Wrap(err)
	}

	t := Trace{ID: id, Data: data}
	if v, ok := head.Metadata["trace-started"]; ok {
		t.Started, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v, ok := head.Metadata["trace-ended"]; ok {
		t.Ended, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v, ok := head.Metadata["trace-frames"]; ok {
		t.Frames, _ = strconv.Atoi(v)
	}
	return t, nil
}

// List returns summaries of stored traces, newest first.
func (a *S3Archive) List(ctx context.Context) ([]TraceInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(a.prefix),
	})

	var out []TraceInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("E051").
				WithDetail("list under %s failed", a.prefix).Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			info := TraceInfo{ID: strings.TrimPrefix(*obj.Key, a.prefix)}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.Stored = *obj.LastModified
			}
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stored.After(out[j].Stored) })
	return out, nil
}

// Cleanup removes traces stored before the age cutoff.
func (a *S3Archive) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(a.prefix),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errors.New("E051").
				WithDetail("list under %s failed", a.prefix).Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				if obj.Key != nil {
					toDelete = append(toDelete, *obj.Key)
				}
			}
		}
	}

	for _, key := range toDelete {
		if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return errors.New("E051").
				WithDetail("delete of %s failed", key).Wrap(err)
		}
	}
	return nil
}

// TraceURL returns a presigned link to a stored trace. It requires a
// presigner, see WithPresigner.
func (a *S3Archive) TraceURL(ctx context.Context, id string) (string, error) {
	if a.presigner == nil {
		return "", errors.New("E051").
			WithDetail("no presigner configured").
			WithSuggestion("Construct the archive with devtools.WithPresigner(s3.NewPresignClient(client))")
	}
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.prefix + id),
	}, s3.WithPresignExpires(a.urlExpiry))
	if err != nil {
		return "", errors.New("E051").
			WithDetail("presign of trace %s failed", id).Wrap(err)
	}
	return req.URL, nil
}
