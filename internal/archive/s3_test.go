package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestPutUploadsUnderPrefix(t *testing.T) {
	fake := &fakeS3{}
	a := &S3Archive{client: fake, bucket: "docs", prefix: "invoices/"}

	obj, err := a.Put(context.Background(), "incoming", "inv001.pdf", "application/pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)

	assert.Equal(t, "invoices/incoming/inv001.pdf", obj.Key)
	assert.Equal(t, "docs", obj.Bucket)
	assert.Equal(t, 8, obj.Size)
	assert.Equal(t, "docs", *fake.input.Bucket)
	assert.Equal(t, "application/pdf", *fake.input.ContentType)
	assert.Equal(t, []byte("%PDF-1.3"), fake.body)
}

func TestPutWrapsUploadError(t *testing.T) {
	a := &S3Archive{client: &fakeS3{err: errors.New("denied")}, bucket: "docs"}

	_, err := a.Put(context.Background(), "outgoing", "out001.pdf", "application/pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outgoing/out001.pdf")
	assert.Contains(t, err.Error(), "denied")
}
