package regfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/zalando/storefront/routing"
)

type watchResponse struct {
	registrations []*routing.Registration
	err           error
}

// WatchClient implements a registration source with file watching. Use
// the Watch function to initialize instances of it.
//
// The parsed set is cached, and the file is read again only after a
// change was reported for it. When watching is not possible, e.g. the
// directory of the file does not exist, the file is read on every load.
type WatchClient struct {
	fileName      string
	watcher       *fsnotify.Watcher
	registrations []*routing.Registration
	loaded        bool
	dirty         bool
	getAll        chan (chan<- watchResponse)
	quit          chan struct{}
	done          chan struct{}
}

// Watch creates a registration source with file watching. Watch doesn't
// follow file system nodes, it always reads from the file identified by
// the initially provided file name.
func Watch(name string) *WatchClient {
	c := &WatchClient{
		fileName: filepath.Clean(name),
		getAll:   make(chan (chan<- watchResponse)),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	c.watcher = c.startWatcher()
	go c.watch()
	return c
}

// startWatcher watches the directory of the file, because editors and
// config map updates typically replace the file instead of writing it.
func (c *WatchClient) startWatcher() *fsnotify.Watcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("failed to watch %s, reading it on every load: %v", c.fileName, err)
		return nil
	}

	if err := w.Add(filepath.Dir(c.fileName)); err != nil {
		log.Warnf("failed to watch %s, reading it on every load: %v", c.fileName, err)
		w.Close()
		return nil
	}

	return w
}

func (c *WatchClient) loadAll() watchResponse {
	if c.loaded && !c.dirty && c.watcher != nil {
		return watchResponse{registrations: c.registrations}
	}

	content, err := os.ReadFile(c.fileName)
	if err != nil {
		if c.loaded && errors.Is(err, fs.ErrNotExist) {
			c.registrations = nil
			c.dirty = false
			return watchResponse{}
		}

		return watchResponse{err: err}
	}

	r, err := Parse(content)
	if err != nil {
		return watchResponse{err: err}
	}

	c.registrations = r
	c.loaded = true
	c.dirty = false
	return watchResponse{registrations: r}
}

func (c *WatchClient) watch() {
	defer close(c.done)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)

	if c.watcher != nil {
		defer c.watcher.Close()
		events = c.watcher.Events
		errs = c.watcher.Errors
	}

	for {
		select {
		case req := <-c.getAll:
			req <- c.loadAll()
		case e, ok := <-events:
			if !ok {
				events = nil
				c.watcher = nil
				continue
			}

			if filepath.Clean(e.Name) == c.fileName {
				c.dirty = true
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}

			log.Errorf("error while watching %s: %v", c.fileName, err)
			c.dirty = true
		case <-c.quit:
			return
		}
	}
}

// LoadAll returns the parsed registrations found in the file. After
// Close, it returns routing.ErrClosed.
func (c *WatchClient) LoadAll() ([]*routing.Registration, error) {
	req := make(chan watchResponse)
	select {
	case c.getAll <- req:
	case <-c.done:
		return nil, routing.ErrClosed
	}

	rsp := <-req
	return rsp.registrations, rsp.err
}

func (c *WatchClient) String() string { return "file:" + c.fileName }

// Close stops watching the configured file.
func (c *WatchClient) Close() {
	close(c.quit)
	<-c.done
}
