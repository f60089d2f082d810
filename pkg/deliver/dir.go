package deliver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// maxSuffix bounds the "name (N).png" search.
const maxSuffix = 999

// Dir saves payloads into a download directory.
//
// Files are written to a temporary file first and moved into place, so a
// failed delivery never leaves a partial file behind. Unless Overwrite is
// set, an existing file is kept and the new one is saved as "name (1).png",
// "name (2).png" and so on.
type Dir struct {
	Path      string
	Overwrite bool

	// Saved, when set, is called with the final path of every delivery.
	Saved func(path string)

	Logger *log.Logger
}

// NewDir returns a deliverer for the directory at path.
func NewDir(path string, overwrite bool, logger *log.Logger) *Dir {
	return &Dir{Path: path, Overwrite: overwrite, Logger: logger}
}

// Deliver saves the payload under its file name.
func (d *Dir) Deliver(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "deliver %s", p.Filename)
	}
	if err := errors.ValidateFilename(p.Filename); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "deliver %s", p.Filename)
	}
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "create download directory")
	}

	tmp, err := writeTemp(d.Path, p.Data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "write %s", p.Filename)
	}
	defer os.Remove(tmp)

	final, err := d.place(tmp, p.Filename)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "save %s", p.Filename)
	}

	if d.Logger != nil {
		d.Logger.Debug("saved file", "path", final, "bytes", len(p.Data))
	}
	if d.Saved != nil {
		d.Saved(final)
	}
	return nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".pngexport-*.part")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// place moves tmp to its final name. Without Overwrite it links instead of
// renaming so an existing file is never replaced, even by a concurrent
// delivery.
func (d *Dir) place(tmp, filename string) (string, error) {
	if d.Overwrite {
		final := filepath.Join(d.Path, filename)
		return final, os.Rename(tmp, final)
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 0; i <= maxSuffix; i++ {
		name := filename
		if i > 0 {
			name = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		final := filepath.Join(d.Path, name)
		err := os.Link(tmp, final)
		if err == nil {
			return final, nil
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", filename, maxSuffix)
}
