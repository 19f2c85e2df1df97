package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func newTestUploader(client PutObjectAPI, base string) *S3Uploader {
	u := NewS3Uploader(client, Config{Bucket: "lumen-media", Region: "eu-west-1", PublicBaseURL: base})
	u.newID = func() string { return "fixed" }
	return u
}

func TestUploadPublicObject(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client, "https://cdn.lumen.test/")

	stored, err := u.Upload(context.Background(), Object{
		Body: []byte("payload"), Filename: "Photo.JPG", ContentType: "image/jpeg", Prefix: "galleries", Public: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "galleries/fixed.jpg", stored.Key)
	assert.Equal(t, "https://cdn.lumen.test/galleries/fixed.jpg", stored.URL)
	assert.EqualValues(t, 7, stored.Size)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "lumen-media", aws.ToString(in.Bucket))
	assert.Equal(t, types.ObjectCannedACLPublicRead, in.ACL)
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
	assert.Equal(t, []byte("payload"), client.bodies[0])
}

func TestUploadPrivateDefaultsToBucketURL(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client, "")

	stored, err := u.Upload(context.Background(), Object{Body: []byte("%PDF"), Filename: "report.pdf", Prefix: "resources"})
	require.NoError(t, err)
	assert.Equal(t, "https://lumen-media.s3.eu-west-1.amazonaws.com/resources/fixed.pdf", stored.URL)
	assert.Equal(t, types.ObjectCannedACLPrivate, client.inputs[0].ACL)
}

func TestUploadRejections(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client, "")

	_, err := u.Upload(context.Background(), Object{Body: []byte("x"), Filename: "a.png", Prefix: "../etc"})
	assert.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = u.Upload(context.Background(), Object{Filename: "a.png", Prefix: "news"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, client.inputs)

	client.err = errors.New("SlowDown")
	_, err = u.Upload(context.Background(), Object{Body: []byte("x"), Filename: "a.png", Prefix: "news"})
	assert.ErrorIs(t, err, httpx.ErrPersistence)
}
