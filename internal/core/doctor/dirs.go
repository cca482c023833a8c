package doctor

import (
	"context"
	"fmt"
	"os"
)

// Dir is a labelled directory the worklog reads or writes.
type Dir struct {
	Label string
	Path  string
}

// DirsCheck verifies that the data directories are directories or can be
// created.
type DirsCheck struct {
	dirs []Dir
}

// NewDirsCheck creates a new directories check.
func NewDirsCheck(dirs ...Dir) *DirsCheck {
	return &DirsCheck{dirs: dirs}
}

func (c *DirsCheck) Name() string {
	return "Directories"
}

func (c *DirsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, dir := range c.dirs {
		item := CheckItem{Label: dir.Label, Detail: dir.Path}

		info, err := os.Stat(dir.Path)
		switch {
		case os.IsNotExist(err):
			item.Status = StatusWarn
			item.Detail = dir.Path + " does not exist yet"
		case err != nil:
			item.Status = StatusFail
			item.Detail = fmt.Sprintf("inaccessible: %v", err)
		case !info.IsDir():
			item.Status = StatusFail
			item.Detail = dir.Path + " is not a directory"
		default:
			item.Status = StatusPass
		}

		result.Items = append(result.Items, item)
	}

	return result
}
