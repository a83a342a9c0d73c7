package imagescan

import (
	"context"
	"errors"
	"os/exec"
)

// ErrNoDetectorCommand is returned when a CommandDetector is constructed
// without a command.
var ErrNoDetectorCommand = errors.New("imagescan: detector command is empty")

// Detector decides whether an image file contains a face.
type Detector interface {
	// Detect reports whether the image at path contains a face. An error
	// means the detector could not run at all, not that no face was found.
	Detect(ctx context.Context, path string) (bool, error)
}

// CommandDetector runs an external command for each image. The image path
// is appended as the final argument, and a zero exit status means a face
// was found. A non-zero exit is a negative result, not an error, because
// detector scripts conventionally signal "no face" that way.
type CommandDetector struct {
	command []string
}

// NewCommandDetector creates a CommandDetector from an argv-style command.
func NewCommandDetector(command []string) (*CommandDetector, error) {
	if len(command) == 0 {
		return nil, ErrNoDetectorCommand
	}
	return &CommandDetector{command: command}, nil
}

// Detect runs the configured command against the image at path.
func (d *CommandDetector) Detect(ctx context.Context, path string) (bool, error) {
	args := make([]string, 0, len(d.command))
	args = append(args, d.command[1:]...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, d.command[0], args...)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
