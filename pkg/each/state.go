package each

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/OMUAPPS/omuchat-python/pkg/fsutil"
	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
)

// StateFile is the name of the file holding the last report inside the state directory.
const StateFile = "last-run.gob"

// SaveReport stores report at path, creating the parent directory if necessary.
func SaveReport(path string, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(report); err != nil {
		return eris.Wrap(err, "failed to encode report")
	}

	return fsutil.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadReport reads a report stored by SaveReport. A missing file yields a nil report and no error.
func LoadReport(path string) (*Report, error) {
	handle, err := os.Open(path)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "failed to open %s", path)
	}
	defer handle.Close()

	var report Report
	if err = gob.NewDecoder(handle).Decode(&report); err != nil {
		return nil, eris.Wrapf(err, "failed to decode %s", path)
	}

	return &report, nil
}

// OnlyFailed keeps the members that failed in report. A nil report keeps nothing.
func OnlyFailed(members []workspace.Member, report *Report) []workspace.Member {
	result := []workspace.Member{}
	if report == nil {
		return result
	}

	failed := map[string]bool{}
	for _, item := range report.Failed() {
		failed[item.Dir] = true
	}

	for _, member := range members {
		if failed[member.Dir] {
			result = append(result, member)
		}
	}

	return result
}
