package file

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/executor"
	"github.com/kbukum/dataflow/pipeline"
	"github.com/kbukum/dataflow/record"
	"github.com/kbukum/dataflow/storage"
	"github.com/kbukum/dataflow/storage/local"
)

func newStore(t *testing.T) *local.Storage {
	t.Helper()
	s, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	return s
}

func readPart(t *testing.T, s storage.Storage, p string, c codec.Codec) []record.Tuple {
	t.Helper()
	rc, err := s.Download(context.Background(), p)
	if err != nil {
		t.Fatalf("download %s: %v", p, err)
	}
	defer rc.Close()
	dec := c.NewDecoder(rc)
	var out []record.Tuple
	for {
		tup, err := codec.DecodeTuple(dec)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("decode part: %v", err)
		}
		out = append(out, tup)
	}
}

func stagingFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestChannel_IsDirect(t *testing.T) {
	c := New("out", nil, "runs", nil)
	if got := channel.KindOf(c); got != channel.KindDirect {
		t.Fatalf("KindOf = %v, want direct", got)
	}
	if _, err := c.Writer(); err == nil {
		t.Error("expected error without storage")
	}
}

func TestChannel_ObjectPath(t *testing.T) {
	cb, _ := codec.CBOR()
	tests := []struct {
		name string
		c    *Channel
		want string
	}{
		{"json", New("out", nil, "runs/t1", codec.JSON(), WithPartName("a1")), "runs/t1/out/part-a1.ndjson"},
		{"cbor", New("out", nil, "", cb, WithPartName("a1")), "out/part-a1.cbor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ObjectPath(); got != tt.want {
				t.Errorf("ObjectPath() = %q, want %q", got, tt.want)
			}
		})
	}
	if p := New("out", nil, "", nil).ObjectPath(); !strings.HasPrefix(p, "out/part-") {
		t.Errorf("default part name path = %q", p)
	}
}

func TestChannel_PublishesOnCommit(t *testing.T) {
	store := newStore(t)
	tmp := t.TempDir()
	ctx := context.Background()
	c := New("out", store, "runs", codec.JSON(), WithPartName("a1"), WithTempDir(tmp))

	w, err := c.Writer()
	if err != nil {
		t.Fatalf("Writer() error: %v", err)
	}
	for _, tup := range []record.Tuple{record.NewTuple("a", 1), record.NewTuple("b", record.NewTuple(2))} {
		if err := w.Write(ctx, nil, tup); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}
	if ok, _ := store.Exists(ctx, c.ObjectPath()); ok {
		t.Fatal("part visible before commit")
	}
	if _, ok := c.Published(); ok {
		t.Fatal("Published() before commit")
	}

	if err := c.Commit(ctx); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	p, ok := c.Published()
	if !ok || p != "runs/out/part-a1.ndjson" {
		t.Fatalf("Published() = %q, %v", p, ok)
	}
	want := []record.Tuple{record.NewTuple("a", int64(1)), record.NewTuple("b", record.NewTuple(int64(2)))}
	if diff := cmp.Diff(want, readPart(t, store, p, codec.JSON())); diff != "" {
		t.Errorf("part mismatch (-want +got):\n%s", diff)
	}

	if err := c.Commit(ctx); err == nil {
		t.Error("second Commit should fail")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if files := stagingFiles(t, tmp); len(files) != 0 {
		t.Errorf("staging files left behind: %v", files)
	}
}

func TestChannel_CloseDiscardsUncommitted(t *testing.T) {
	store := newStore(t)
	tmp := t.TempDir()
	ctx := context.Background()
	c := New("out", store, "", nil, WithTempDir(tmp))
	w, _ := c.Writer()
	if err := w.Write(ctx, nil, record.NewTuple("x")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if files := stagingFiles(t, tmp); len(files) != 0 {
		t.Errorf("staging files left behind: %v", files)
	}
	if infos, _ := store.List(ctx, ""); len(infos) != 0 {
		t.Errorf("objects published without commit: %v", infos)
	}
	if err := w.Write(ctx, nil, record.NewTuple("y")); err == nil {
		t.Error("write after close should fail")
	}
}

func TestChannel_CommitWithoutWriterPublishesEmptyPart(t *testing.T) {
	store := newStore(t)
	c := New("out", store, "", nil, WithPartName("empty"))
	if err := c.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	infos, err := store.List(context.Background(), "out")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 1 || infos[0].Size != 0 {
		t.Errorf("List() = %+v, want one empty part", infos)
	}
}

func TestChannel_RejectsShape(t *testing.T) {
	c := New("out", newStore(t), "", nil, WithTempDir(t.TempDir()))
	w, _ := c.Writer()
	defer c.Close()
	ctx := context.Background()
	if err := w.Write(ctx, record.EmptyKey(), record.NewTuple("x")); err == nil {
		t.Error("expected error for keyed write")
	}
	if err := w.Write(ctx, nil, &record.IndexedTuple{}); err == nil {
		t.Error("expected error for carrier value")
	}
}

type failingStore struct {
	storage.Storage
	err error
}

func (f failingStore) Upload(context.Context, string, io.Reader) error { return f.err }

func TestChannel_UploadFailure(t *testing.T) {
	boom := errors.New("bucket gone")
	c := New("out", failingStore{err: boom}, "", nil, WithTempDir(t.TempDir()))
	w, _ := c.Writer()
	defer c.Close()
	_ = w.Write(context.Background(), nil, record.NewTuple("x"))
	if err := c.Commit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Commit() = %v, want %v", err, boom)
	}
	if _, ok := c.Published(); ok {
		t.Error("failed commit should not report a published part")
	}
}

func TestChannel_DirectTaskWithTwoChannels(t *testing.T) {
	store := newStore(t)
	tmp := t.TempDir()
	primary := New("main", store, "runs", nil, WithPartName("a1"), WithTempDir(tmp))
	side := New("side", store, "runs", nil, WithPartName("a1"), WithTempDir(tmp))
	src := pipeline.FromSlice([]record.Tuple{record.NewTuple(1), record.NewTuple(2)})

	task, err := executor.New(executor.Config{TaskID: "t1", Output: "main"}, src, []channel.Channel{side, primary})
	if err != nil {
		t.Fatalf("executor.New() error: %v", err)
	}
	res := task.Run(context.Background())
	if res.Err != nil {
		t.Fatalf("Run() error: %v", res.Err)
	}

	want := []record.Tuple{record.NewTuple(int64(1)), record.NewTuple(int64(2))}
	if diff := cmp.Diff(want, readPart(t, store, "runs/main/part-a1.ndjson", codec.JSON())); diff != "" {
		t.Errorf("main part mismatch (-want +got):\n%s", diff)
	}
	if got := readPart(t, store, "runs/side/part-a1.ndjson", codec.JSON()); len(got) != 0 {
		t.Errorf("side part = %v, want empty", got)
	}
	if files := stagingFiles(t, tmp); len(files) != 0 {
		t.Errorf("staging files left behind: %v", files)
	}
}
