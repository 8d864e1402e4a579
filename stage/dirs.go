package stage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/runlog"
)

// Stage directories below the run root.
const (
	RawDir          = "00_RAW"
	TrimmedDir      = "01_trimmed"
	BasicAlignedDir = "02_basic_aligned"
	BasicMeganDir   = "03_basic_megan"
	HostFilteredDir = "02_host_filtered"
	HostAlignedDir  = "03_host_aligned"
	HostMeganDir    = "04_host_megan"
	Selected16SDir  = "02_16S_selected"
	Aligned16SDir   = "03_16S_aligned"
)

// Dirs creates stage directories below a root once each, in a
// concurrency-safe way, and remembers the order they were created in.
type Dirs struct {
	root string
	log  *runlog.Log

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	created []string
}

// NewDirs returns a directory guard for root.
func NewDirs(root string, log *runlog.Log) *Dirs {
	return &Dirs{root: root, log: log, locks: make(map[string]*sync.Mutex)}
}

// Root returns the run root.
func (d *Dirs) Root() string { return d.root }

// Path returns the absolute path of a stage directory.
func (d *Dirs) Path(name string) string { return filepath.Join(d.root, name) }

// Ensure creates the stage directory name if it does not exist yet and
// returns its path. A directory created with relax set is opened up to
// mode 0777, recursively.
func (d *Dirs) Ensure(name string, relax bool) (string, error) {
	lock := d.lock(name)
	lock.Lock()
	defer lock.Unlock()

	path := d.Path(name)
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return "", errors.DirectoryMissing(path)
		}
		return path, nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", errors.DirectoryMissing(path).WithCause(err)
	}
	if relax {
		if err := chmodAll(path, 0o777); err != nil {
			return "", errors.DirectoryMissing(path).WithCause(err)
		}
	}

	d.mu.Lock()
	d.created = append(d.created, name)
	d.mu.Unlock()
	d.log.Record(runlog.Entry{
		Event:   runlog.EventDirCreate,
		Message: "Created directory " + name,
		Fields:  map[string]any{logger.FieldDir: name},
	})
	return path, nil
}

// Created returns the directories created so far, oldest first.
func (d *Dirs) Created() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.created...)
}

func (d *Dirs) lock(name string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[name]
	if !ok {
		l = &sync.Mutex{}
		d.locks[name] = l
	}
	return l
}

func chmodAll(root string, mode fs.FileMode) error {
	return filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chmod(path, mode)
	})
}
