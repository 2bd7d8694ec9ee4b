package configure

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock takes an exclusive lock next to the config file so two runs never
// write the series list back over each other. The returned func releases it.
func Lock(path string) (func() error, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: another run is in progress", path)
	}
	return fl.Unlock, nil
}
