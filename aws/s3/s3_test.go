package s3

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cvmdata/fdk"
)

// fakeS3 serves objects from memory, two per page.
type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	keys    []string
}

func (f *fakeS3) ListObjectsPagesWithContext(ctx aws.Context, in *s3.ListObjectsInput, fn func(*s3.ListObjectsOutput, bool) bool, opts ...request.Option) error {
	for i := 0; i < len(f.keys); i += 2 {
		page := &s3.ListObjectsOutput{}
		for _, k := range f.keys[i:min(i+2, len(f.keys))] {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k)})
		}
		if !fn(page, i+2 >= len(f.keys)) {
			break
		}
	}
	return nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func newFake() *fakeS3 {
	f := &fakeS3{objects: map[string]string{
		"DOC/":                         "",
		"DOC/cda_fi_202401.zip":        "a",
		"DOC/inf_diario_fi_202401.zip": "b",
		"DOC/readme.txt":               "c",
		"DOC/balancete_fi_202401.zip":  "d",
	}}
	for k := range f.objects {
		f.keys = append(f.keys, k)
	}
	return f
}

func TestFetcher(t *testing.T) {
	d, err := ioutil.TempDir("", "fdks3")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	defer os.RemoveAll(d)

	f, err := NewFetcher("us-east-1", "bucket", d, OptFetcherPrefix("DOC/"), OptFetcherClient(newFake()))
	if err != nil {
		t.Fatalf("getting fetcher: %v", err)
	}
	names, err := f.List(context.Background(), ".zip")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	want := []string{"balancete_fi_202401.zip", "cda_fi_202401.zip", "inf_diario_fi_202401.zip"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected names: %v", names)
	}

	path, err := f.Fetch(context.Background(), "cda_fi_202401.zip")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if path != filepath.Join(d, "cda_fi_202401.zip") {
		t.Fatalf("unexpected path: %s", path)
	}
	if got, _ := ioutil.ReadFile(path); string(got) != "a" {
		t.Fatalf("unexpected content: %q", got)
	}
	if _, err := f.Fetch(context.Background(), "missing.zip"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}

func TestMainRun(t *testing.T) {
	d, err := ioutil.TempDir("", "fdks3")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	defer os.RemoveAll(d)

	m := NewMain()
	m.Dir = d
	m.Client = newFake()
	m.Log = fdk.NopLogger{}
	if err := m.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}
	if len(m.Report.Paths) != 3 || len(m.Report.Failed) != 0 {
		t.Fatalf("unexpected report: %+v", m.Report)
	}
}
