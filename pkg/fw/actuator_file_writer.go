package fw

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/utils"
)

// NewActuatorFileWriterImpl returns a new ActuatorFileWriterImpl instance
func NewActuatorFileWriterImpl(path string, log klog.Logger) *ActuatorFileWriterImpl {
	return &ActuatorFileWriterImpl{
		log:  log,
		path: path,
	}
}

// ActuatorFileWriterImpl implements Actuator interface and is used to save
// rule programs to file, one engine command per line. The file is only
// rewritten when its content would change, so repeated runs with the same
// input leave the file untouched.
type ActuatorFileWriterImpl struct {
	log  klog.Logger
	path string
}

// Actuate implements Actuator interface
func (a ActuatorFileWriterImpl) Actuate(program *rules.Program) error {
	exist, err := utils.PathExists(a.path)
	if err != nil {
		return errors.Wrapf(err, "failed to determine if path exist: %s", a.path)
	}

	currentBuf := bytes.NewBuffer([]byte{})
	if exist {
		data, err := os.ReadFile(a.path)
		if err != nil {
			a.log.Error(err, "failed to read file", "path", a.path)
		} else {
			currentBuf = bytes.NewBuffer(data)
		}
	}

	rendered := []byte(program.Render())
	if bytes.Equal(currentBuf.Bytes(), rendered) {
		a.log.V(4).Info("current and new rules are the same - no action needed")
		return nil
	}

	a.log.V(4).Info("saving new rules", "path", a.path)
	return os.WriteFile(a.path, rendered, 0o644)
}
