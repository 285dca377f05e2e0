package imaging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// Artifact is one output file and the function that produces its bytes.
type Artifact struct {
	Name  string // file name inside the output directory
	Write func(io.Writer) error
}

// Commit writes every artifact into dir as a group. Each artifact is first
// written to a temporary file in dir; only when all writes succeeded are
// the temporaries renamed over their final names. On failure every
// temporary is removed and no final file is touched.
func Commit(dir string, artifacts ...Artifact) (paths []string, err error) {
	dir = ExpandPath(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	temps := make([]string, 0, len(artifacts))
	defer func() {
		if err == nil {
			return
		}
		for _, t := range temps {
			err = multierr.Append(err, ignoreMissing(os.Remove(t)))
		}
	}()

	for _, a := range artifacts {
		tmp, err := writeTemp(dir, a)
		if tmp != "" {
			temps = append(temps, tmp)
		}
		if err != nil {
			return nil, err
		}
	}

	paths = make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = filepath.Join(dir, a.Name)
		if err := os.Rename(temps[i], paths[i]); err != nil {
			return nil, fmt.Errorf("renaming %s: %w", a.Name, err)
		}
	}
	return paths, nil
}

func writeTemp(dir string, a Artifact) (string, error) {
	f, err := os.CreateTemp(dir, "."+a.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", a.Name, err)
	}
	name := f.Name()
	if err := a.Write(f); err != nil {
		f.Close()
		return name, fmt.Errorf("writing %s: %w", a.Name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return name, fmt.Errorf("syncing %s: %w", a.Name, err)
	}
	if err := f.Close(); err != nil {
		return name, fmt.Errorf("closing %s: %w", a.Name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return name, fmt.Errorf("chmod %s: %w", a.Name, err)
	}
	return name, nil
}

func ignoreMissing(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
