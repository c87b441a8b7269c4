// Package store resolves, uploads, and downloads model and data artifacts,
// and owns the process-wide model accessor that materializes the trained
// ensemble exactly once under concurrent request load.
//
// Artifact locations are either s3:// URIs or local filesystem paths; both
// are listed and matched by file extension the same way.
package store

import (
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// maxRetries bounds every storage call; a stuck download must not wedge the
// serving path indefinitely.
const maxRetries = 3

var localRegion = getenvDefault("AWS_REGION", "us-east-1")

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// validateURI checks whether the given uri points to S3.
func validateURI(uri string) (*url.URL, error) {
	s3url, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if s3url.Scheme != "s3" {
		return nil, errors.Newf("%s is not an s3 uri", uri)
	}
	return s3url, nil
}

// newS3 creates an s3 client with bounded retries.
func newS3() (*s3.S3, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return s3.New(sess, aws.NewConfig().WithRegion(localRegion).WithMaxRetries(maxRetries)), nil
}

// listS3Objects lists the object keys under an s3 prefix URI. Zero-size
// objects are skipped; they correspond to directory markers.
func listS3Objects(uri string) ([]string, error) {
	s3url, err := validateURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := newS3()
	if err != nil {
		return nil, err
	}

	params := &s3.ListObjectsV2Input{
		Bucket: aws.String(s3url.Host),
		Prefix: aws.String(strings.TrimPrefix(s3url.Path, "/")),
	}

	var keys []string
	err = client.ListObjectsV2Pages(params, func(p *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range p.Contents {
			if *obj.Size == 0 {
				continue
			}
			keys = append(keys, *obj.Key)
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing objects under %s", uri)
	}
	return keys, nil
}

// openS3Object returns a reader over the object at the given s3 URI.
func openS3Object(uri string) (io.ReadCloser, error) {
	s3url, err := validateURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := newS3()
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s3url.Host),
		Key:    aws.String(strings.TrimPrefix(s3url.Path, "/")),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", uri)
	}
	return out.Body, nil
}

// bufferedS3Writer spools writes to a temp file and uploads on Close, so a
// failed producer never leaves a partial object that looks complete.
type bufferedS3Writer struct {
	f     *os.File
	s3uri *url.URL
}

func (w bufferedS3Writer) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w bufferedS3Writer) Close() error {
	defer os.Remove(w.f.Name())
	defer w.f.Close()

	if err := w.f.Sync(); err != nil {
		return err
	}
	if _, err := w.f.Seek(0, 0); err != nil {
		return err
	}

	client, err := newS3()
	if err != nil {
		return err
	}
	_, err = client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(w.s3uri.Host),
		Key:    aws.String(strings.TrimPrefix(w.s3uri.Path, "/")),
		Body:   w.f,
	})
	return err
}

// Abort drops the spool file without uploading anything.
func (w bufferedS3Writer) Abort() error {
	w.f.Close()
	return os.Remove(w.f.Name())
}

// newBufferedS3Writer returns a writer that spools to disk and uploads to S3
// on Close.
func newBufferedS3Writer(uri string) (bufferedS3Writer, error) {
	s3url, err := validateURI(uri)
	if err != nil {
		return bufferedS3Writer{}, err
	}
	f, err := os.CreateTemp("", "s3buffer")
	if err != nil {
		return bufferedS3Writer{}, err
	}
	return bufferedS3Writer{f: f, s3uri: s3url}, nil
}

// Join appends an artifact name to a location URI or path.
func Join(location, name string) string {
	if IsS3URI(location) {
		s3url, err := validateURI(location)
		if err != nil {
			return location
		}
		return "s3://" + s3url.Host + path.Join("/", s3url.Path, name)
	}
	return filepath.Join(location, name)
}
