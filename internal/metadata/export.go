package metadata

import (
	"encoding/csv"
	"fmt"

	"github.com/leandrodaf/midisampler/internal/atomicfile"
	"go.uber.org/multierr"
)

// WriteCSV writes the header and rows to path. The file only appears once
// it is complete and synced.
func WriteCSV(path string, rows []Row) (err error) {
	f, err := atomicfile.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, f.Cleanup())
		}
	}()

	w := csv.NewWriter(f)
	if err = w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err = w.Write(r.Record()); err != nil {
			return fmt.Errorf("write row %s: %w", r.AudioFilename, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err = f.Commit(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
