package regfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando/storefront/logging/loggingtest"
	"github.com/zalando/storefront/routing"
)

const testWatchFileContent = `
registrations:
  - pattern: /foo
    content: foo
  - pattern: /bar/*
    content: bar
  - pattern: /baz
    content: baz
`

const testWatchFileInvalidContent = `
registrations:
  - pattern: /foo
`

const testWatchFileUpdatedContent = `
registrations:
  - pattern: /foo
    content: foo
  - pattern: /baz
    content: baz-new
`

type watchTest struct {
	t       *testing.T
	name    string
	log     *loggingtest.TestLogger
	file    *WatchClient
	routing *routing.Routing
}

func initWatchTest(t *testing.T) *watchTest {
	name := filepath.Join(t.TempDir(), "registrations.yaml")
	return &watchTest{t: t, name: name}
}

func (wt *watchTest) writeFile(content string) {
	wt.t.Helper()
	require.NoError(wt.t, os.WriteFile(wt.name, []byte(content), 0o644))
}

func (wt *watchTest) deleteFile() {
	wt.t.Helper()
	require.NoError(wt.t, os.Remove(wt.name))
}

func (wt *watchTest) start() {
	wt.log = loggingtest.New()
	wt.file = Watch(wt.name)
	wt.routing = routing.New(routing.Options{
		Log:         wt.log,
		DataClients: []routing.DataClient{wt.file},
		PollTimeout: 6 * time.Millisecond,
	})
}

func (wt *watchTest) close() {
	wt.routing.Close()
	wt.file.Close()
	wt.log.Close()
}

func (wt *watchTest) resolvesTo(path, contentID string) bool {
	r, ok := wt.routing.Resolve(path)
	if contentID == "" {
		return !ok
	}

	return ok && r.ContentId == contentID
}

func (wt *watchTest) eventually(path, contentID string) {
	wt.t.Helper()
	assert.Eventually(wt.t, func() bool {
		return wt.resolvesTo(path, contentID)
	}, 3*time.Second, 6*time.Millisecond, "path %s, content %q", path, contentID)
}

func TestWatchInitialLoad(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileContent)
	wt.start()
	defer wt.close()

	wt.eventually("/foo", "foo")
	wt.eventually("/bar/qux", "bar")
	wt.eventually("/baz", "baz")
}

func TestWatchInitialFails(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileInvalidContent)
	wt.start()
	defer wt.close()

	require.NoError(t, wt.log.WaitFor("error while loading registrations", 3*time.Second))
	assert.True(t, wt.resolvesTo("/foo", ""))
}

func TestWatchMissingFileLoadsLater(t *testing.T) {
	wt := initWatchTest(t)
	wt.start()
	defer wt.close()

	require.NoError(t, wt.log.WaitFor("error while loading registrations", 3*time.Second))
	wt.writeFile(testWatchFileContent)
	wt.eventually("/foo", "foo")
}

func TestWatchUpdate(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileContent)
	wt.start()
	defer wt.close()

	wt.eventually("/bar/qux", "bar")
	wt.writeFile(testWatchFileUpdatedContent)
	wt.eventually("/baz", "baz-new")
	wt.eventually("/bar/qux", "")
	wt.eventually("/foo", "foo")
}

func TestWatchInvalidUpdateKeepsPrevious(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileContent)
	wt.start()
	defer wt.close()

	wt.eventually("/baz", "baz")
	wt.writeFile(testWatchFileInvalidContent)
	require.NoError(t, wt.log.WaitFor("error while loading registrations", 3*time.Second))
	assert.True(t, wt.resolvesTo("/baz", "baz"))

	wt.writeFile(testWatchFileUpdatedContent)
	wt.eventually("/baz", "baz-new")
}

func TestWatchDelete(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileContent)
	wt.start()
	defer wt.close()

	wt.eventually("/foo", "foo")
	wt.deleteFile()
	wt.eventually("/foo", "")
	wt.eventually("/baz", "")
}

func TestWatchCachesUnchangedFile(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileContent)
	c := Watch(wt.name)
	defer c.Close()

	first, err := c.LoadAll()
	require.NoError(t, err)

	second, err := c.LoadAll()
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}

	assert.Equal(t, "file:"+wt.name, c.String())
}

func TestWatchLoadAfterClose(t *testing.T) {
	wt := initWatchTest(t)
	wt.writeFile(testWatchFileContent)
	c := Watch(wt.name)
	c.Close()

	_, err := c.LoadAll()
	assert.ErrorIs(t, err, routing.ErrClosed)
}
