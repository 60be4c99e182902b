package r2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory S3API for driver and operation tests. It enforces
// the store behaviors the code under test depends on, in particular the
// rejection of unsorted part lists on complete.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modTimes map[string]time.Time

	sessions     map[string]*fakeSession
	nextUploadID int
	nextETag     int

	listErr   error
	putErr    error
	getErr    error
	deleteErr error
	copyErr   error
	createErr error

	partErr   func(partNumber int32) error
	partPanic func(partNumber int32) bool
	partHook  func(partNumber int32)
	partDelay time.Duration

	partCalls   int
	inFlight    int
	maxInFlight int

	abortCalls    int
	completeCalls int

	contentLengthOverride *int64
}

type fakeSession struct {
	key           string
	parts         map[int32][]byte
	etags         map[int32]string
	completed     bool
	aborted       bool
	completeOrder []int32
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:  make(map[string][]byte),
		modTimes: make(map[string]time.Time),
		sessions: make(map[string]*fakeSession),
	}
}

func (f *fakeS3) putObjectDirect(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.modTimes[key] = time.Now().UTC()
}

func (f *fakeS3) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

func (f *fakeS3) session(uploadID string) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[uploadID]
}

func (f *fakeS3) etag() string {
	f.nextETag++
	return fmt.Sprintf("\"etag-%d\"", f.nextETag)
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	contents := make([]types.Object, 0, len(keys))
	for _, key := range keys {
		contents = append(contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(f.objects[key]))),
			ETag:         aws.String(fmt.Sprintf("\"obj-%s\"", key)),
			LastModified: aws.Time(f.modTimes[key]),
		})
	}

	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = data
	f.modTimes[aws.ToString(params.Key)] = time.Now().UTC()

	return &s3.PutObjectOutput{ETag: aws.String(f.etag())}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	length := int64(len(data))
	if f.contentLengthOverride != nil {
		length = *f.contentLengthOverride
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(length),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return nil, f.deleteErr
	}

	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.copyErr != nil {
		return nil, f.copyErr
	}

	srcKey := strings.TrimPrefix(aws.ToString(params.CopySource), aws.ToString(params.Bucket)+"/")
	data, ok := f.objects[srcKey]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	dst := make([]byte, len(data))
	copy(dst, data)
	f.objects[aws.ToString(params.Key)] = dst
	f.modTimes[aws.ToString(params.Key)] = time.Now().UTC()

	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextUploadID++
	id := fmt.Sprintf("upload-%d", f.nextUploadID)
	f.sessions[id] = &fakeSession{
		key:   aws.ToString(params.Key),
		parts: make(map[int32][]byte),
		etags: make(map[int32]string),
	}

	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
}

func (f *fakeS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	partNumber := aws.ToInt32(params.PartNumber)

	f.mu.Lock()
	f.partCalls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	hook := f.partHook
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if hook != nil {
		hook(partNumber)
	}
	if f.partPanic != nil && f.partPanic(partNumber) {
		panic(fmt.Sprintf("injected panic on part %d", partNumber))
	}
	if f.partErr != nil {
		if err := f.partErr(partNumber); err != nil {
			return nil, err
		}
	}
	if f.partDelay > 0 {
		time.Sleep(f.partDelay)
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[aws.ToString(params.UploadId)]
	if !ok || session.aborted {
		return nil, errors.New("NoSuchUpload")
	}

	etag := f.etag()
	session.parts[partNumber] = data
	session.etags[partNumber] = etag

	return &s3.UploadPartOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.completeCalls++

	session, ok := f.sessions[aws.ToString(params.UploadId)]
	if !ok || session.aborted {
		return nil, errors.New("NoSuchUpload")
	}

	var assembled []byte
	prev := int32(0)
	for _, part := range params.MultipartUpload.Parts {
		num := aws.ToInt32(part.PartNumber)
		if num <= prev {
			return nil, errors.New("InvalidPartOrder")
		}
		prev = num

		data, ok := session.parts[num]
		if !ok {
			return nil, errors.New("InvalidPart")
		}
		if session.etags[num] != aws.ToString(part.ETag) {
			return nil, errors.New("InvalidPart")
		}

		session.completeOrder = append(session.completeOrder, num)
		assembled = append(assembled, data...)
	}

	session.completed = true
	f.objects[session.key] = assembled
	f.modTimes[session.key] = time.Now().UTC()

	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abortCalls++

	session, ok := f.sessions[aws.ToString(params.UploadId)]
	if !ok {
		return nil, errors.New("NoSuchUpload")
	}
	session.aborted = true

	return &s3.AbortMultipartUploadOutput{}, nil
}
