package detector

import "github.com/goccy/go-yaml"

// taskfile is the subset of a Taskfile this package inspects.
type taskfile struct {
	Tasks map[string]any `yaml:"tasks"`
}

// taskfileHasTest reports whether a Taskfile defines a "test" task.
func taskfileHasTest(data []byte) bool {
	var tf taskfile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return false
	}
	_, ok := tf.Tasks["test"]
	return ok
}
