package dataset

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Load reads and decodes a dataset from a local file.
func Load(path string) (Dataset, error) {
	data, err := ReadFile(path)
	if err != nil {
		return Dataset{}, err
	}
	return DecodeBytes(data)
}

// ReadFile returns the raw bytes of a local dataset file.
func ReadFile(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "read %s", path)
	}
	return data, nil
}
