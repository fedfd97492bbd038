package dedupe_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"desktidy/internal/dedupe"
	"desktidy/internal/domain"
	"desktidy/internal/failure"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func writeEntry(t *testing.T, fsys afero.Fs, name, content string, age int) domain.FileEntry {
	t.Helper()
	path := filepath.Join("/root", name)
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return domain.FileEntry{
		Path:     path,
		Name:     name,
		Category: domain.Documents,
		Size:     int64(len(content)),
		Created:  base.Add(time.Duration(age) * time.Minute),
		Modified: base,
	}
}

func groupPaths(groups []domain.DuplicateGroup) [][]string {
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		paths := make([]string, 0, len(g.Files))
		for _, f := range g.Files {
			paths = append(paths, f.Name)
		}
		out = append(out, paths)
	}
	return out
}

func TestFindDuplicatesIdenticalFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "file1.txt", "duplicate content", 0),
		writeEntry(t, fsys, "file2.txt", "duplicate content", 1),
	}

	res, err := dedupe.New(fsys, dedupe.Options{Workers: 1}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatalf("FindDuplicates returned error: %v", err)
	}
	if len(res.Groups) != 1 || len(res.Groups[0].Files) != 2 {
		t.Fatalf("expected one group of two, got %v", groupPaths(res.Groups))
	}
	if res.Groups[0].Key.Size != int64(len("duplicate content")) {
		t.Fatalf("unexpected key size %d", res.Groups[0].Key.Size)
	}
}

func TestFindDuplicatesKeeperIsOldest(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "a.jpg", "pixels", 10),
		writeEntry(t, fsys, "b.jpg", "pixels", 5),
		writeEntry(t, fsys, "c.jpg", "pixels", 20),
	}

	res, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"b.jpg", "a.jpg", "c.jpg"}}
	if got := groupPaths(res.Groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	if res.Groups[0].Keeper().Name != "b.jpg" {
		t.Fatalf("keeper = %s", res.Groups[0].Keeper().Name)
	}
}

func TestFindDuplicatesDifferentContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "file1.txt", "content1", 0),
		writeEntry(t, fsys, "file2.txt", "content2", 1),
	}
	res, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 {
		t.Fatalf("expected no groups, got %v", groupPaths(res.Groups))
	}
}

func TestFindDuplicatesSizeMismatchNeverHashed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "short.txt", "short", 0),
		writeEntry(t, fsys, "long.txt", "this is a much longer content", 1),
	}
	cache := newRecordingCache()
	res, err := dedupe.New(fsys, dedupe.Options{Cache: cache}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 {
		t.Fatalf("expected no groups, got %v", groupPaths(res.Groups))
	}
	if cache.lookups() != 0 {
		t.Fatalf("expected unique sizes to skip hashing, got %d lookups", cache.lookups())
	}
}

func TestFindDuplicatesEmptyFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "empty1.txt", "", 1),
		writeEntry(t, fsys, "empty2.txt", "", 0),
	}
	res, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"empty2.txt", "empty1.txt"}}
	if got := groupPaths(res.Groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
}

func TestFindDuplicatesMultipleGroups(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "file1.txt", "group1", 0),
		writeEntry(t, fsys, "file2.txt", "group1", 1),
		writeEntry(t, fsys, "file3.txt", "group2", 2),
		writeEntry(t, fsys, "file4.txt", "group2", 3),
		writeEntry(t, fsys, "file5.txt", "unique", 4),
	}
	res, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"file1.txt", "file2.txt"}, {"file3.txt", "file4.txt"}}
	if got := groupPaths(res.Groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
}

func TestFindDuplicatesSingleFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{writeEntry(t, fsys, "file1.txt", "unique content", 0)}
	res, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 || len(res.Failures) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestFindDuplicatesRecordsUnreadableFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "a.txt", "same", 0),
		writeEntry(t, fsys, "b.txt", "same", 1),
		{Path: "/root/gone.txt", Name: "gone.txt", Size: 4, Created: base},
	}
	res, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatalf("read failures must not abort detection: %v", err)
	}
	if len(res.Groups) != 1 {
		t.Fatalf("expected the readable pair to be grouped, got %v", groupPaths(res.Groups))
	}
	if len(res.Failures) != 1 || res.Failures[0].Path != "/root/gone.txt" {
		t.Fatalf("unexpected failures %+v", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, failure.ErrRead) {
		t.Fatalf("expected ReadError, got %v", res.Failures[0].Err)
	}
	if !strings.Contains(res.Failures[0].Err.Error(), "gone.txt") {
		t.Fatalf("failure should name the path: %v", res.Failures[0].Err)
	}
}

func TestFindDuplicatesRequiresBothDigests(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := writeEntry(t, fsys, "a.bin", "aaaa", 0)
	b := writeEntry(t, fsys, "b.bin", "bbbb", 1)
	cache := newRecordingCache()
	cache.seed(a.Path, domain.ContentKey{Size: 4, Fast: "0000000000000001", Strong: "aa"})
	cache.seed(b.Path, domain.ContentKey{Size: 4, Fast: "0000000000000001", Strong: "bb"})

	res, err := dedupe.New(fsys, dedupe.Options{Cache: cache}).FindDuplicates(context.Background(), []domain.FileEntry{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Groups) != 0 {
		t.Fatalf("a fast-digest match alone must not declare duplicates: %v", groupPaths(res.Groups))
	}
}

func TestFindDuplicatesDeterministicAcrossWorkers(t *testing.T) {
	fsys := afero.NewMemMapFs()
	var entries []domain.FileEntry
	for i := 0; i < 24; i++ {
		content := fmt.Sprintf("payload-%02d", i%6)
		entries = append(entries, writeEntry(t, fsys, fmt.Sprintf("f%02d.dat", 23-i), content, i%4))
	}

	seq, err := dedupe.New(fsys, dedupe.Options{Workers: 1}).FindDuplicates(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		par, err := dedupe.New(fsys, dedupe.Options{Workers: 8}).FindDuplicates(context.Background(), entries)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(groupPaths(seq.Groups), groupPaths(par.Groups)) {
			t.Fatalf("parallel run %d differs:\n%v\n%v", run, groupPaths(seq.Groups), groupPaths(par.Groups))
		}
	}
	if len(seq.Groups) != 6 {
		t.Fatalf("expected 6 groups, got %d", len(seq.Groups))
	}
}

func TestFindDuplicatesHonoursCancellation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "a.txt", "same", 0),
		writeEntry(t, fsys, "b.txt", "same", 1),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := dedupe.New(fsys, dedupe.Options{}).FindDuplicates(ctx, entries); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFindDuplicatesStoresDigestsInCache(t *testing.T) {
	fsys := afero.NewMemMapFs()
	entries := []domain.FileEntry{
		writeEntry(t, fsys, "a.txt", "same", 0),
		writeEntry(t, fsys, "b.txt", "same", 1),
	}
	cache := newRecordingCache()
	if _, err := dedupe.New(fsys, dedupe.Options{Cache: cache}).FindDuplicates(context.Background(), entries); err != nil {
		t.Fatal(err)
	}
	if cache.stored() != 2 {
		t.Fatalf("expected 2 stored digests, got %d", cache.stored())
	}
}

func TestChecksumStreamsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	data := []byte(strings.Repeat("0123456789abcdef", 64*1024))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	key, err := dedupe.Checksum(afero.NewOsFs(), path)
	if err != nil {
		t.Fatalf("Checksum returned error: %v", err)
	}
	if key.Size != int64(len(data)) {
		t.Fatalf("key size = %d, want %d", key.Size, len(data))
	}
	if len(key.Fast) != 16 || len(key.Strong) != 64 {
		t.Fatalf("unexpected digest lengths %q %q", key.Fast, key.Strong)
	}
}

type recordingCache struct {
	mu      sync.Mutex
	seeded  map[string]domain.ContentKey
	nLookup int
	nStore  int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{seeded: make(map[string]domain.ContentKey)}
}

func (c *recordingCache) seed(path string, key domain.ContentKey) {
	c.seeded[path] = key
}

func (c *recordingCache) Lookup(_ context.Context, path string, _ int64, _ time.Time) (domain.ContentKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nLookup++
	key, ok := c.seeded[path]
	return key, ok
}

func (c *recordingCache) Store(context.Context, string, int64, time.Time, domain.ContentKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nStore++
	return nil
}

func (c *recordingCache) lookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nLookup
}

func (c *recordingCache) stored() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nStore
}
